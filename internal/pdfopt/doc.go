// Package pdfopt shrinks game manuals. ocrmypdf does the heavy lifting when
// it is installed; pdfcpu rewrites the document structure otherwise. The
// smaller of the optimized and original files is kept, and a job that
// cannot be optimized is copied unchanged.
package pdfopt
