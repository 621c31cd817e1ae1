package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// WriteReport encodes v deterministically and writes it to path. A
// ".gz" suffix selects gzip compression.
func WriteReport(path string, v interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".gz") {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

// ReadReport reads a report back, transparently decompressing ".gz"
// files.
func ReadReport(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
