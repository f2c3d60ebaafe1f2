package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("unknown preview format %q", s)
}

// FormatFromPath picks the format from a file extension, or def if the
// extension is not one we write.
func FormatFromPath(path string, def Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return def
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		return fmt.Errorf("unknown preview format %q", f)
	}
	return nil
}

// Writer saves previews into a directory.
type Writer struct {
	outputDir string
	prefix    string
	format    Format

	now func() time.Time
}

// NewWriter creates a preview writer.
func NewWriter(outputDir, prefix string, format Format) *Writer {
	return &Writer{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// GenerateFilename returns a timestamped file name without saving.
func (w *Writer) GenerateFilename() string {
	timestamp := w.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s%s", w.prefix, timestamp, w.format.Ext())
	if w.outputDir != "" {
		filename = filepath.Join(w.outputDir, filename)
	}
	return filename
}

// Save writes img to path, or to a generated file name when path is empty.
// It returns the path written.
func (w *Writer) Save(img image.Image, path string) (string, error) {
	format := w.format
	if path == "" {
		if w.outputDir != "" {
			if err := os.MkdirAll(w.outputDir, 0755); err != nil {
				return "", fmt.Errorf("creating output dir: %w", err)
			}
		}
		path = w.GenerateFilename()
	} else {
		format = FormatFromPath(path, w.format)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if err := Encode(file, img, format); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
