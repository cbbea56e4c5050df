// Package validation checks a resolved model path before it is handed
// to the whisper.cpp loader, rejecting anything that isn't a
// plausible GGML file.
package validation

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ggmlMagic   = 0x67676d6c // "ggml", little-endian
	ggmlMinSize = 48         // magic + at least 11 int32 header fields
)

// ValidateModelPath cleans path, confirms it exists and carries a
// GGML header, and returns its absolute form.
func ValidateModelPath(path string) (string, error) {
	clean := filepath.Clean(path)
	if _, err := os.Stat(clean); err != nil {
		return "", fmt.Errorf("model file not found: %s", clean)
	}
	if err := validateGGMLHeader(clean); err != nil {
		return "", fmt.Errorf("invalid model file: %w", err)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("failed to resolve model path: %w", err)
	}
	return abs, nil
}

func validateGGMLHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if magic != ggmlMagic {
		return fmt.Errorf("invalid GGML magic number: got 0x%x, expected 0x%x", magic, ggmlMagic)
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat model file: %w", err)
	}
	if info.Size() < ggmlMinSize {
		return fmt.Errorf("model file too small to be valid GGML format: %d bytes", info.Size())
	}
	return nil
}
