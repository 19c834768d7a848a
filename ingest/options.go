package ingest

// Options are the run-scoped settings for an import. The CLI builds one
// immutable value per run and every operation receives it explicitly; nothing
// here changes while scenes are being processed.
type Options struct {
	// Band selection: explicit band tokens and/or named spectral sets.
	// Both empty means all bands.
	Bands []string
	Sets  []string

	// Mapset is the shared target workspace when SingleMapset is set;
	// otherwise each scene gets a mapset named after itself.
	Mapset       string
	SingleMapset bool

	Link               bool // r.external instead of r.in.gdal
	SkipExisting       bool
	Overwrite          bool
	OverrideProjection bool
	NoTimestamp        bool
	ForceTimestamp     bool
	SkipMicroseconds   bool
	CopyMetadata       bool
	RemoveExtracted    bool
	NoImport           bool // derive timestamps and catalog lines only

	// TimestampOverride bypasses metadata parsing entirely when non-empty.
	TimestampOverride string

	CatalogPath   string
	CatalogPrefix string

	// KeepGoing continues a multi-scene batch past scene-fatal errors.
	KeepGoing bool

	// Memory is the cache hint in MB handed to the import module unmodified.
	Memory int

	// GRASS database layout, used to place copied metadata files.
	GrassDatabase string
	GrassLocation string
}
