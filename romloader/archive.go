package romloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// extractFromZIP extracts the first ROM file from a ZIP archive
func extractFromZIP(path string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || !isROMFile(entry.Name) {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}
		return data, filepath.Base(entry.Name), nil
	}

	return nil, "", ErrNoROMFile
}

// extractFrom7z extracts the first ROM file from a 7z archive
func extractFrom7z(path string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || !isROMFile(entry.Name) {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", entry.Name, err)
		}
		return data, filepath.Base(entry.Name), nil
	}

	return nil, "", ErrNoROMFile
}

// extractFromGzip extracts a ROM from a gzip stream. Plain .gz holds a
// single compressed ROM; .tar.gz and .tgz are scanned for the first ROM
// entry.
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractFromTar(gz)
	}

	data, err := limitedRead(gz)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read gzip content: %w", err)
	}

	// Strip the .gz suffix to recover the ROM name
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return data, name, nil
}

// extractFromTar scans a tar stream for the first ROM entry
func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isROMFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoROMFile
}
