// Package grass drives a GRASS GIS session as the raster data store the
// importer writes into. Bands are imported with r.in.gdal (or linked with
// r.external) into one mapset per scene and stamped with r.timestamp.
package grass

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ImportFlags carries the per-run switches forwarded to the import modules.
type ImportFlags struct {
	OverrideProjection bool
	Overwrite          bool
}

// Store is the raster store contract the import orchestrator consumes.
type Store interface {
	EnsureMapset(name string) error
	RasterExists(name string) (bool, error)
	ImportRaster(source, name, title string, flags ImportFlags, memory int) error
	LinkRaster(source, name, title string, flags ImportFlags) error
	SetTimestamp(name, stamp string) error
}

type runnerFunc func(name string, args ...string) ([]byte, error)

// CommandStore implements Store by invoking GRASS modules as commands inside
// an already initialized GRASS session.
type CommandStore struct {
	run runnerFunc
}

// NewCommandStore returns a Store backed by the GRASS command line modules.
func NewCommandStore() *CommandStore {
	return &CommandStore{run: runCommand}
}

func runCommand(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s failed: %v: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// EnsureMapset creates the mapset if needed and switches the session to it.
func (s *CommandStore) EnsureMapset(name string) error {
	_, err := s.run("g.mapset", "-c", "mapset="+name, "--quiet")
	return err
}

// RasterExists checks for a raster of the given name in the current mapset.
func (s *CommandStore) RasterExists(name string) (bool, error) {
	out, err := s.run("g.findfile", "element=cell", "file="+name, "mapset=.")
	if err != nil {
		// g.findfile exits non-zero when the raster is absent
		return false, nil
	}
	for _, line := range strings.Split(string(out), "\n") {
		if value, found := strings.CutPrefix(strings.TrimSpace(line), "file="); found {
			return len(strings.Trim(value, "'\"")) > 0, nil
		}
	}
	return false, nil
}

// ImportRaster reads a GeoTIFF band into the store via r.in.gdal.
func (s *CommandStore) ImportRaster(source, name, title string, flags ImportFlags, memory int) error {
	args := []string{
		"input=" + source,
		"output=" + name,
		"title=" + title,
		fmt.Sprintf("memory=%d", memory),
		"--quiet",
	}
	if flags.OverrideProjection {
		args = append(args, "-o")
	}
	if flags.Overwrite {
		args = append(args, "--overwrite")
	}
	_, err := s.run("r.in.gdal", args...)
	return err
}

// LinkRaster registers a GeoTIFF band as a pseudo raster map via r.external,
// without copying pixel data.
func (s *CommandStore) LinkRaster(source, name, title string, flags ImportFlags) error {
	args := []string{
		"input=" + source,
		"output=" + name,
		"title=" + title,
		"--quiet",
	}
	if flags.OverrideProjection {
		args = append(args, "-o")
	}
	if flags.Overwrite {
		args = append(args, "--overwrite")
	}
	_, err := s.run("r.external", args...)
	return err
}

// SetTimestamp attaches the rendered acquisition timestamp to a raster map.
func (s *CommandStore) SetTimestamp(name, stamp string) error {
	_, err := s.run("r.timestamp", "map="+name, "date="+stamp)
	return err
}
