package ingest

import (
	"os"
	"strings"

	"github.com/geodatalab/landsat-import/mtl"
)

// Catalog accumulates one registration line per successfully timestamped
// scene, for bulk time-series registration. Lines are appended in scene order
// and flushed once at the end of a run, so a failed scene never corrupts
// already-derived output.
type Catalog struct {
	prefix string
	lines  []string
}

// NewCatalog returns an empty catalog; prefix is prepended to scene names.
func NewCatalog(prefix string) *Catalog {
	return &Catalog{prefix: prefix}
}

// Add appends the registration line for a scene.
func (c *Catalog) Add(scene string, ts mtl.Timestamp) {
	c.lines = append(c.lines, ts.CatalogLine(c.prefix, scene))
}

// Lines returns the accumulated lines in insertion order.
func (c *Catalog) Lines() []string {
	return c.lines
}

// Flush writes the catalog to path, one line per scene. A blank path or an
// empty catalog is a no-op.
func (c *Catalog) Flush(path string) error {
	if path == "" || len(c.lines) == 0 {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString(strings.Join(c.lines, "\n") + "\n"); err != nil {
		return err
	}
	return file.Sync()
}
