package pdfopt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"esdemedia/internal/config"
	"esdemedia/internal/convert"
	"esdemedia/internal/services"
	"esdemedia/internal/testsupport"
)

// minimalPDF builds a one-page document drawing a single 1x1 image with the
// given filter ("" for uncompressed).
func minimalPDF(filter string) []byte {
	imageDict := "/Type /XObject /Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8"
	if filter != "" {
		imageDict += " /Filter /" + filter
	}
	data := "\x80"
	content := "q 10 0 0 10 0 0 cm /Im1 Do Q"
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 10 10] /Resources << /XObject << /Im1 4 0 R >> >> /Contents 5 0 R >>",
		fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", imageDict, len(data), data),
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	})
}

// textOnlyPDF builds a one-page document whose content stream draws a line
// and references no images.
func textOnlyPDF() []byte {
	content := "0 0 m 10 10 l S"
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 10 10] /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	})
}

func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, 0, len(objects))
	for i, body := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func newPDFJob(t *testing.T, content []byte) convert.Job {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "roms", "psx", "media", "manuals", "game.pdf")
	testsupport.WriteBytes(t, src, content)
	return convert.Job{Source: src, Dest: filepath.Join(dir, "out", "manuals", "game.pdf"), Kind: convert.KindPDF}
}

func sizedAttempt(name string, size int) convert.Attempt {
	return convert.AttemptFunc{
		Label: name,
		Fn: func(_ context.Context, _, dst string) error {
			return os.WriteFile(dst, bytes.Repeat([]byte("%"), size), 0o644)
		},
	}
}

func TestConvertKeepsSmallerOptimizedPDF(t *testing.T) {
	job := newPDFJob(t, bytes.Repeat([]byte("x"), 4096))
	conv := &Converter{Attempts: []convert.Attempt{sizedAttempt("ocrmypdf", 1024)}}

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Action != convert.ActionOptimized || out.Tool != "ocrmypdf" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.BytesOut != 1024 {
		t.Fatalf("expected optimized size, got %d", out.BytesOut)
	}
}

func TestConvertKeepsOriginalWhenOptimizedIsLarger(t *testing.T) {
	job := newPDFJob(t, bytes.Repeat([]byte("x"), 100))
	conv := &Converter{Attempts: []convert.Attempt{sizedAttempt("ocrmypdf", 500)}}

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Action != convert.ActionCopied {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !bytes.Equal(testsupport.ReadFile(t, job.Dest), testsupport.ReadFile(t, job.Source)) {
		t.Fatal("dest must be the original bytes")
	}
}

func TestConvertFallsBackToPdfcpuWhenOCRmyPDFMissing(t *testing.T) {
	testsupport.IsolatePath(t)
	job := newPDFJob(t, minimalPDF(""))
	conv := New(testsupport.NewConfig(t), nil)

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Tool != "pdfcpu" {
		t.Fatalf("expected pdfcpu to handle the job, got %+v", out)
	}
	if out.BytesOut > out.BytesIn {
		t.Fatalf("dest larger than source: %+v", out)
	}
	entries, err := os.ReadDir(filepath.Dir(job.Dest))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), convert.WorkspacePrefix) {
			t.Fatalf("workspace %s left behind", entry.Name())
		}
	}
}

func TestConvertCopiesAlreadyOptimalPDF(t *testing.T) {
	content := minimalPDF("JPXDecode")
	job := newPDFJob(t, content)
	conv := &Converter{Attempts: []convert.Attempt{PdfcpuAttempt()}}

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Action != convert.ActionCopied {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !bytes.Equal(testsupport.ReadFile(t, job.Dest), content) {
		t.Fatal("already optimal PDF must be copied unchanged")
	}
}

func TestConvertCopiesPDFWithoutImages(t *testing.T) {
	content := textOnlyPDF()
	job := newPDFJob(t, content)
	conv := &Converter{Attempts: []convert.Attempt{PdfcpuAttempt()}}

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Action != convert.ActionCopied || out.Tool != "pdfcpu" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !bytes.Equal(testsupport.ReadFile(t, job.Dest), content) {
		t.Fatal("image-free PDF must be copied unchanged")
	}
}

func TestConvertCopiesUnreadablePDF(t *testing.T) {
	job := newPDFJob(t, []byte("not a pdf at all"))
	conv := &Converter{Attempts: []convert.Attempt{PdfcpuAttempt()}}

	out := convert.Guard(context.Background(), nil, conv, job)
	if !out.Succeeded || out.Action != convert.ActionCopied {
		t.Fatalf("expected copy fallback, got %+v", out)
	}
}

func TestInspectImages(t *testing.T) {
	dir := t.TempDir()
	modern := filepath.Join(dir, "modern.pdf")
	plain := filepath.Join(dir, "plain.pdf")
	testsupport.WriteBytes(t, modern, minimalPDF("JBIG2Decode"))
	testsupport.WriteBytes(t, plain, minimalPDF(""))

	stats, err := InspectImages(modern)
	if err != nil {
		t.Fatalf("InspectImages: %v", err)
	}
	if stats.Images != 1 || !stats.AllModern() {
		t.Fatalf("unexpected stats %+v", stats)
	}
	stats, err = InspectImages(plain)
	if err != nil {
		t.Fatalf("InspectImages: %v", err)
	}
	if stats.Images != 1 || stats.AllModern() {
		t.Fatalf("unexpected stats %+v", stats)
	}

	textOnly := filepath.Join(dir, "text.pdf")
	testsupport.WriteBytes(t, textOnly, textOnlyPDF())
	stats, err = InspectImages(textOnly)
	if err != nil {
		t.Fatalf("InspectImages: %v", err)
	}
	if stats.Images != 0 || !stats.AllModern() {
		t.Fatalf("unexpected stats for image-free PDF %+v", stats)
	}
}

func TestOCRmyPDFArgs(t *testing.T) {
	settings := config.Default().PDF
	got := strings.Join(OCRmyPDFArgs(settings, "in.pdf", "out.pdf", false), " ")
	want := "--optimize 3 --skip-text --jbig2-lossy --jpeg-quality 75 --output-type pdf --quiet in.pdf out.pdf"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
	forced := strings.Join(OCRmyPDFArgs(settings, "in.pdf", "out.pdf", true), " ")
	if !strings.Contains(forced, "--force-ocr") || strings.Contains(forced, "--skip-text") {
		t.Fatalf("forced args = %q", forced)
	}
}

type scriptedExecutor struct {
	errs  []error
	calls [][]string
}

func (s *scriptedExecutor) Run(_ context.Context, _ string, args []string, _ func(string)) error {
	s.calls = append(s.calls, args)
	var err error
	if len(s.errs) > 0 {
		err, s.errs = s.errs[0], s.errs[1:]
	}
	if err == nil {
		return os.WriteFile(args[len(args)-1], []byte("%PDF"), 0o644)
	}
	return err
}

func TestOCRmyPDFRetriesWithForceOCR(t *testing.T) {
	testsupport.IsolatePath(t)
	testsupport.PrependPath(t, testsupport.StubBinaries(t, t.TempDir(), "ocrmypdf"))

	exec := &scriptedExecutor{errs: []error{errors.New("exit status 6")}}
	attempt := OCRmyPDFAttempt(config.Default().PDF, 0, exec)
	if !attempt.Available() {
		t.Fatal("stubbed ocrmypdf should be available")
	}
	dst := filepath.Join(t.TempDir(), "out.pdf")
	if err := attempt.Encode(context.Background(), "in.pdf", dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected one retry, got %d calls", len(exec.calls))
	}
	if !strings.Contains(strings.Join(exec.calls[1], " "), "--force-ocr") {
		t.Fatalf("retry should force OCR: %v", exec.calls[1])
	}
}

func TestOCRmyPDFFailureFallsThrough(t *testing.T) {
	testsupport.IsolatePath(t)
	testsupport.PrependPath(t, testsupport.StubBinaries(t, t.TempDir(), "ocrmypdf"))

	exec := &scriptedExecutor{errs: []error{errors.New("exit 2"), errors.New("exit 2")}}
	err := OCRmyPDFAttempt(config.Default().PDF, 0, exec).Encode(context.Background(), "in.pdf", "out.pdf")
	if !services.Fallthrough(err) {
		t.Fatalf("expected a fallthrough error, got %v", err)
	}
}
