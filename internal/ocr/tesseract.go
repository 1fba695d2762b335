package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tesseract runs the tesseract binary against a temp image file.
type Tesseract struct {
	cliPath string
}

func NewTesseract(cli string) (*Tesseract, error) {
	cli = strings.TrimSpace(cli)
	if cli == "" {
		cli = "tesseract"
	}
	cliPath, err := exec.LookPath(cli)
	if err != nil {
		return nil, fmt.Errorf("tesseract CLI not found (%s)", cli)
	}
	return &Tesseract{cliPath: cliPath}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	tmpDir, err := os.MkdirTemp("", "candidly-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "screenshot.png")
	if err := os.WriteFile(imgPath, image, 0o600); err != nil {
		return "", err
	}

	// "stdout" makes tesseract print the recognized text instead of
	// writing an output file.
	cmd := exec.CommandContext(ctx, t.cliPath, imgPath, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", context.Canceled
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("tesseract failed: %s", detail)
	}
	return normalize(stdout.String()), nil
}
