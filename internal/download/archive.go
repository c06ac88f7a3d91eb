package download

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// isZip reports whether the file at p starts with a zip local file header.
func isZip(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()
	header := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return n == len(zipMagic) && bytes.Equal(header, zipMagic), nil
}

// extractMember copies the archive member whose base name is exeName into
// target. Members under a bin/ directory win over other matches.
func extractMember(archivePath, exeName, target string) (int64, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	var member *zip.File
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := strings.ReplaceAll(file.Name, "\\", "/")
		if !strings.EqualFold(path.Base(name), exeName) {
			continue
		}
		if member == nil || strings.EqualFold(path.Base(path.Dir(name)), "bin") {
			member = file
		}
	}
	if member == nil {
		return 0, ErrMemberNotFound
	}

	rc, err := member.Open()
	if err != nil {
		return 0, fmt.Errorf("open archive member %s: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}
	written, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(target)
		return 0, fmt.Errorf("extract %s: %w", member.Name, copyErr)
	}
	if closeErr != nil {
		os.Remove(target)
		return 0, fmt.Errorf("close %s: %w", target, closeErr)
	}
	return written, nil
}
