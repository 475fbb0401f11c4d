// Package extract turns uploaded answer sheets into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupported is returned for file types no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// Extractor returns the text content of a file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PDFToText shells out to poppler's pdftotext.
type PDFToText struct {
	Binary  string
	Timeout time.Duration
}

func NewPDFToText() *PDFToText {
	return &PDFToText{Binary: "pdftotext", Timeout: 30 * time.Second}
}

func (p *PDFToText) ExtractText(ctx context.Context, path string) (string, error) {
	bin := p.Binary
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", fmt.Errorf("%s not found in PATH", bin)
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, "-enc", "UTF-8", path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("pdftotext %s: %s", filepath.Base(path), msg)
	}
	return out.String(), nil
}

// PlainText reads text and markdown files as they are.
type PlainText struct{}

func (PlainText) ExtractText(_ context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".text":
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Auto dispatches on the file extension.
type Auto struct {
	PDF   Extractor
	Plain Extractor
}

// NewAuto returns an Auto using pdftotext for PDFs.
func NewAuto() *Auto {
	return &Auto{PDF: NewPDFToText(), Plain: PlainText{}}
}

func (a *Auto) ExtractText(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return a.PDF.ExtractText(ctx, path)
	}
	return a.Plain.ExtractText(ctx, path)
}
