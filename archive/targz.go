// Package archive handles the compressed tar.gz form Landsat scenes are
// distributed in.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var archiveSuffixes = []string{".tar.gz", ".tgz"}

// IsArchive reports whether a scene path looks like a compressed archive
// rather than an unpacked directory.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// SceneName returns the scene base name of an archive path, without the
// archive suffix.
func SceneName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}

// ListMembers returns the member names of a tar.gz archive without
// extracting anything.
func ListMembers(path string) ([]string, error) {
	reader, closeAll, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	var members []string
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Could not read archive %q: %w", path, err)
		}
		members = append(members, header.Name)
	}
	return members, nil
}

// ExtractAll decompresses and unpacks an archive into the destination
// directory, refusing member paths that would escape it.
func ExtractAll(path, destination string) error {
	reader, closeAll, err := openArchive(path)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return err
	}

	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Could not read archive %q: %w", path, err)
		}

		target, err := securePath(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeMember(target, reader, header.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// symlinks and the like have no business in a scene archive
			continue
		}
	}
}

func openArchive(path string) (*tar.Reader, func(), error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("Could not open archive %q: %w", path, err)
	}
	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("Could not open gzip stream of %q: %w", path, err)
	}
	closeAll := func() {
		gzipReader.Close()
		file.Close()
	}
	return tar.NewReader(gzipReader), closeAll, nil
}

func securePath(destination, member string) (string, error) {
	target := filepath.Join(destination, filepath.Clean(member))
	if !strings.HasPrefix(target, filepath.Clean(destination)+string(os.PathSeparator)) {
		return "", fmt.Errorf("Archive member %q escapes the extraction directory", member)
	}
	return target, nil
}

func writeMember(target string, reader io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	return err
}
