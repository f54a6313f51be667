// Package imageopt re-encodes PNG and JPEG artwork as WebP and keeps
// whichever of the encoded or original bytes is smaller.
//
// Encoders are tried in order: ImageMagick, cwebp, then the in-process
// library encoder. When every encoder fails the original is copied, so an
// image job only fails when the copy itself fails.
package imageopt
