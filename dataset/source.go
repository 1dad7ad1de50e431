package dataset

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens a data file, decompressing .gz, .lz4 and .zip on the fly.
// For zip archives the largest member is read. The archive itself is left untouched.
func openSource(filePath string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return openZipMember(filePath)
	case ".gz":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		gr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("gzip %s: %w", filePath, err)
		}
		return &readCloser{Reader: gr, closers: []io.Closer{file, gr}}, nil
	case ".lz4":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: lz4.NewReader(file), closers: []io.Closer{file}}, nil
	}
	return os.Open(filePath)
}

// innerName strips a compression suffix so the inner format can be detected.
func innerName(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == ".gz" || ext == ".lz4" {
		return strings.TrimSuffix(filePath, filepath.Ext(filePath))
	}
	return filePath
}

func openZipMember(filePath string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}

	// Find largest file in archive
	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 > largestSize || largestFile == nil {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		r.Close()
		return nil, fmt.Errorf("zip %s: %w", filePath, ErrEmptyFile)
	}

	rc, err := largestFile.Open()
	if err != nil {
		r.Close()
		return nil, err
	}
	return &readCloser{Reader: rc, closers: []io.Closer{r, rc}}, nil
}
