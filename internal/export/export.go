// Package export writes generated files out as a zip archive or a directory.
package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/utils"
)

// cleanPath validates a generated path and returns it in slash form relative
// to the archive or directory root.
func cleanPath(p string) (string, error) {
	c := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	c = strings.TrimPrefix(c, "/")
	if c == "" || c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("refusing unsafe path %q", p)
	}
	return c, nil
}

// entries cleans every path and then keeps one record per cleaned path, the
// last one written.
func entries(files []codegen.FileRecord) ([]codegen.FileRecord, error) {
	out := make([]codegen.FileRecord, 0, len(files))
	for _, f := range files {
		name, err := cleanPath(f.Path)
		if err != nil {
			return nil, err
		}
		f.Path = name
		out = append(out, f)
	}
	return codegen.Dedupe(out, codegen.LastWins), nil
}

// WriteZip writes one archive entry per distinct path. When paths repeat the
// last record wins.
func WriteZip(w io.Writer, files []codegen.FileRecord) (int, error) {
	recs, err := entries(files)
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(w)
	n := 0
	now := time.Now()
	for _, f := range recs {
		name := f.Path
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now}
		hdr.SetMode(0o644)
		ew, err := zw.CreateHeader(hdr)
		if err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := io.WriteString(ew, withTrailingNewline(f.Content)); err != nil {
			_ = zw.Close()
			return n, fmt.Errorf("write zip entry %s: %w", name, err)
		}
		n++
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("finalize zip: %w", err)
	}
	return n, nil
}

// WriteZipFile writes the archive to path atomically.
func WriteZipFile(path string, files []codegen.FileRecord) (int, error) {
	var buf bytes.Buffer
	n, err := WriteZip(&buf, files)
	if err != nil {
		return 0, err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteDir materializes files below root. Existing files are overwritten
// unless overwrite is false, in which case the first conflict is reported.
func WriteDir(root string, files []codegen.FileRecord, overwrite bool) (int, error) {
	recs, err := entries(files)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range recs {
		dst := filepath.Join(root, filepath.FromSlash(f.Path))
		if !overwrite {
			if _, err := os.Stat(dst); err == nil {
				return n, fmt.Errorf("%s already exists (use --force to overwrite)", dst)
			}
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return n, fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
		}
		if err := utils.SafeWriteFile(dst, []byte(withTrailingNewline(f.Content))); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func withTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
