// Package model resolves the configured Whisper model name (§6
// "model" setting) to a local ggml-*.bin file, downloading it on
// demand and verifying its checksum, adapted from the teacher's model
// manager.
package model

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// knownModel describes where to fetch one ASR model size and how to
// verify it once downloaded. SHA256 is left empty for sizes the
// upstream release page does not publish a fixed checksum for; the
// manager skips verification in that case rather than failing closed.
type knownModel struct {
	URL    string
	SHA256 string
}

// catalog covers every model name the settings.model enum allows
// (spec.md §6), pointing at the public whisper.cpp ggml releases.
var catalog = map[string]knownModel{
	"tiny":   {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin"},
	"base":   {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin"},
	"small":  {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin"},
	"medium": {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin"},
	"large":  {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin"},
	"turbo":  {URL: "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo.bin"},
}

// Manager resolves a model name to a local file path, downloading and
// checksumming it on first use.
type Manager struct {
	dir    string
	logger *log.Logger
}

// New returns a Manager that caches model files under dir (typically
// "$XDG_CACHE_HOME/voxd/models").
func New(dir string, logger *log.Logger) *Manager {
	return &Manager{dir: dir, logger: logger}
}

// Resolve returns the absolute local path of name's ggml file,
// downloading it first if it is not already cached. name must be one
// of the enum values in catalog (spec.md §6 "model").
func (m *Manager) Resolve(name string) (string, error) {
	info, ok := catalog[name]
	if !ok {
		return "", fmt.Errorf("model: unknown model name %q", name)
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("model: failed to create model directory: %w", err)
	}
	path := filepath.Join(m.dir, fmt.Sprintf("ggml-%s.bin", name))

	if _, err := os.Stat(path); err == nil {
		if info.SHA256 != "" {
			if verr := verifyChecksum(path, info.SHA256); verr != nil {
				m.logf("model: cached %s failed checksum (%v), re-downloading", name, verr)
				if err := m.download(info.URL, path, info.SHA256); err != nil {
					return "", err
				}
			}
		}
		return filepath.Abs(path)
	}

	m.logf("model: %s not found locally, downloading from %s", name, info.URL)
	if err := m.download(info.URL, path, info.SHA256); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

func (m *Manager) download(url, destPath, expectedSHA256 string) error {
	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("model: failed to create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tmpPath)
	}()

	transport := &http.Transport{TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12}}
	if strings.HasPrefix(url, "https://127.0.0.1") || strings.HasPrefix(url, "https://localhost") {
		transport.TLSClientConfig.InsecureSkipVerify = true // test servers only
	}
	client := &http.Client{Timeout: 30 * time.Minute, Transport: transport}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("model: failed to download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model: download failed with status %s", resp.Status)
	}

	hasher := sha256.New()
	progress := &progressWriter{total: resp.ContentLength, logger: m.logger}
	if _, err := io.Copy(io.MultiWriter(out, hasher, progress), resp.Body); err != nil {
		return fmt.Errorf("model: failed to save download: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("model: failed to close downloaded file: %w", err)
	}

	if expectedSHA256 != "" {
		actual := hex.EncodeToString(hasher.Sum(nil))
		if actual != expectedSHA256 {
			return fmt.Errorf("model: checksum mismatch: expected %s, got %s", expectedSHA256, actual)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("model: failed to move download into place: %w", err)
	}
	if err := os.Chmod(destPath, 0644); err != nil {
		m.logf("model: warning: failed to set permissions on %s: %v", destPath, err)
	}
	return nil
}

func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("model: failed to open for checksum: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("model: failed to read for checksum: %w", err)
	}
	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != expected {
		return fmt.Errorf("model: checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

type progressWriter struct {
	total   int64
	written int64
	lastPct int
	logger  *log.Logger
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.written += int64(n)
	if w.total > 0 {
		pct := int(w.written * 100 / w.total)
		if pct != w.lastPct {
			w.lastPct = pct
			if w.logger != nil {
				w.logger.Printf("model: downloading... %d%%", pct)
			}
		}
	}
	return n, nil
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
