package validation

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModelFile(t *testing.T, size int, magic uint32, validMagic bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ggml-test.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if validMagic {
		binary.Write(f, binary.LittleEndian, magic)
	} else {
		binary.Write(f, binary.LittleEndian, uint32(0xdeadbeef))
	}
	if size > 4 {
		f.Write(make([]byte, size-4))
	}
	return path
}

func TestValidateModelPath(t *testing.T) {
	tests := []struct {
		name          string
		path          func() string
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid GGML file",
			path:        func() string { return writeModelFile(t, 64, ggmlMagic, true) },
			expectError: false,
		},
		{
			name:          "missing file",
			path:          func() string { return "/nonexistent/model.bin" },
			expectError:   true,
			errorContains: "model file not found",
		},
		{
			name:          "wrong magic",
			path:          func() string { return writeModelFile(t, 64, ggmlMagic, false) },
			expectError:   true,
			errorContains: "invalid GGML magic number",
		},
		{
			name:          "too small",
			path:          func() string { return writeModelFile(t, 20, ggmlMagic, true) },
			expectError:   true,
			errorContains: "too small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateModelPath(tt.path())
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result == "" {
				t.Error("expected non-empty resolved path")
			}
		})
	}
}

func TestValidateModelPathCleansTraversal(t *testing.T) {
	valid := writeModelFile(t, 64, ggmlMagic, true)
	dir := filepath.Dir(valid)
	dirty := filepath.Join(dir, "..", filepath.Base(dir), filepath.Base(valid))

	result, err := ValidateModelPath(dirty)
	if err != nil {
		t.Fatalf("unexpected error after cleaning traversal: %v", err)
	}
	if result == "" {
		t.Error("expected non-empty resolved path")
	}
}
