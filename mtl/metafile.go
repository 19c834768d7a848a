package mtl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MissingMetadataFileError reports a scene directory without an MTL metadata
// file. Fatal for the scene: no timestamp can be derived without one.
type MissingMetadataFileError struct {
	Scene string
}

func (e MissingMetadataFileError) Error() string {
	return fmt.Sprintf("No MTL metadata file found for scene %q", e.Scene)
}

// FindMetadataFile locates the *MTL*.txt member of a scene directory.
func FindMetadataFile(sceneDir string) (string, error) {
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return "", fmt.Errorf("Could not list scene directory %q: %w", sceneDir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, "MTL") && strings.HasSuffix(strings.ToLower(name), ".txt") {
			return filepath.Join(sceneDir, name), nil
		}
	}
	return "", MissingMetadataFileError{Scene: filepath.Base(sceneDir)}
}

// CopyToCellMisc copies the metadata file into a mapset's cell_misc directory
// so the provenance of imported bands stays with the mapset.
func CopyToCellMisc(metafile, cellMiscDir string) error {
	if err := os.MkdirAll(cellMiscDir, 0o755); err != nil {
		return err
	}
	source, err := os.Open(metafile)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(filepath.Join(cellMiscDir, filepath.Base(metafile)))
	if err != nil {
		return err
	}
	defer target.Close()

	_, err = io.Copy(target, source)
	return err
}
