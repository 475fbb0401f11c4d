package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stubExtractor struct {
	called string
}

func (s *stubExtractor) ExtractText(_ context.Context, path string) (string, error) {
	s.called = path
	return "pdf text", nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlainText(t *testing.T) {
	path := writeFile(t, "answers.txt", "Q1. What? (2 marks)\nAns: this")
	got, err := PlainText{}.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "Q1. What? (2 marks)\nAns: this" {
		t.Errorf("got %q", got)
	}
}

func TestPlainTextUnsupported(t *testing.T) {
	path := writeFile(t, "scan.png", "binary")
	_, err := PlainText{}.ExtractText(context.Background(), path)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestPlainTextMissingFile(t *testing.T) {
	_, err := PlainText{}.ExtractText(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAutoDispatch(t *testing.T) {
	pdf := &stubExtractor{}
	a := &Auto{PDF: pdf, Plain: PlainText{}}

	got, err := a.ExtractText(context.Background(), "/tmp/sheet.PDF")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "pdf text" || pdf.called != "/tmp/sheet.PDF" {
		t.Errorf("pdf path not dispatched: got %q, called %q", got, pdf.called)
	}

	path := writeFile(t, "sheet.md", "hello")
	got, err = a.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestPDFToTextMissingBinary(t *testing.T) {
	p := &PDFToText{Binary: "pdftotext-does-not-exist"}
	if _, err := p.ExtractText(context.Background(), "x.pdf"); err == nil {
		t.Error("expected error when binary is missing")
	}
}
