package main

import (
	"fmt"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/geodatalab/landsat-import/grass"
	"github.com/geodatalab/landsat-import/ingest"
	"github.com/geodatalab/landsat-import/mtl"
	"github.com/geodatalab/landsat-import/registry"
	"github.com/geodatalab/landsat-import/util"
)

const (
	memoryDefault = 300
	memoryMax     = 2047
)

var bandTokens = map[string]bool{
	"1": true, "2": true, "3": true, "4": true, "5": true, "6": true,
	"7": true, "8": true, "9": true, "10": true, "11": true, "QA": true,
}

var importFlags = []cli.Flag{
	cli.StringFlag{Name: "scene", Usage: "One or multiple Landsat scenes: tar.gz files or unpacked directories, comma separated"},
	cli.StringFlag{Name: "pool", Usage: "Directory containing multiple unpacked Landsat scenes"},
	cli.StringFlag{Name: "bands", Usage: "Band(s) to select (1..11, QA); default is all bands"},
	cli.StringFlag{Name: "set", Usage: "Named spectral subset(s), e.g. oli, tirs, ndvi"},
	cli.StringFlag{Name: "mapset", Usage: "Mapset to import all scenes in (requires --single-mapset)"},
	cli.BoolFlag{Name: "single-mapset, 1", Usage: "Import all scenes in one mapset"},
	cli.StringFlag{Name: "timestamp", Usage: "Manual timestamp 'yyyy-mm-dd hh:mm:ss.ssssss +zzzz', overrides metadata"},
	cli.StringFlag{Name: "output", Usage: "Output file for t.register compliant scene timestamps"},
	cli.StringFlag{Name: "prefix", Usage: "Prefix for scene names in the timestamp output"},
	cli.IntFlag{Name: "memory", Value: memoryDefault, Usage: "Maximum cache memory (in MB) for the import module"},
	cli.BoolFlag{Name: "link, e", Usage: "Link GeoTIFF bands as pseudo raster maps instead of importing"},
	cli.BoolFlag{Name: "skip-existing, s", Usage: "Skip import of existing bands"},
	cli.BoolFlag{Name: "override-projection, o", Usage: "Override projection check"},
	cli.BoolFlag{Name: "no-copy-metadata, c", Usage: "Do not copy the metadata file into the mapset"},
	cli.BoolFlag{Name: "remove-extracted, r", Usage: "Remove the scene directory after import if the source is a tar.gz file"},
	cli.BoolFlag{Name: "force-timestamp, f", Usage: "Force time-stamping of bands that were skipped"},
	cli.BoolFlag{Name: "no-timestamp, d", Usage: "Do not timestamp imported bands"},
	cli.BoolFlag{Name: "skip-microseconds, m", Usage: "Keep integer seconds only"},
	cli.BoolFlag{Name: "keep-going, k", Usage: "Continue with the next scene when one scene fails"},
	cli.BoolFlag{Name: "register", Usage: "Record imported bands in the registry database"},
}

func importAction(c *cli.Context) error {
	opts, err := optionsFromContext(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	scenes := splitList(c.String("scene"))
	pool := c.String("pool")
	if len(scenes) == 0 && pool == "" {
		return cli.NewExitError("Either scene= or pool= is required", 2)
	}
	if c.Bool("remove-extracted") && len(scenes) == 0 {
		return cli.NewExitError("remove-extracted requires scene=", 2)
	}

	importer := ingest.New(grass.NewCommandStore(), opts, logger)

	if c.Bool("register") {
		database, err := getDbConnectionFunc()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer database.Close()
		importer.SetRecorder(registry.New(database))
	}

	if err := importer.Run(scenes, pool); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

// optionsFromContext builds the immutable run options, validating flag
// combinations the way the core expects them.
func optionsFromContext(c *cli.Context) (ingest.Options, error) {
	opts := ingest.Options{
		Bands:              splitList(c.String("bands")),
		Sets:               splitList(c.String("set")),
		Mapset:             c.String("mapset"),
		SingleMapset:       c.Bool("single-mapset"),
		Link:               c.Bool("link"),
		SkipExisting:       c.Bool("skip-existing"),
		Overwrite:          util.IsOverwriteEnabled(),
		OverrideProjection: c.Bool("override-projection"),
		NoTimestamp:        c.Bool("no-timestamp"),
		ForceTimestamp:     c.Bool("force-timestamp"),
		SkipMicroseconds:   c.Bool("skip-microseconds"),
		CopyMetadata:       !c.Bool("no-copy-metadata"),
		RemoveExtracted:    c.Bool("remove-extracted"),
		TimestampOverride:  c.String("timestamp"),
		CatalogPath:        c.String("output"),
		CatalogPrefix:      c.String("prefix"),
		KeepGoing:          c.Bool("keep-going"),
		Memory:             c.Int("memory"),
		GrassDatabase:      util.GetGrassDatabase(),
		GrassLocation:      util.GetGrassLocation(),
	}

	if opts.Memory < 0 || opts.Memory > memoryMax {
		return opts, fmt.Errorf("memory must be between 0 and %d MB, got %d", memoryMax, opts.Memory)
	}
	if opts.SingleMapset && opts.Mapset == "" {
		return opts, fmt.Errorf("single-mapset requires mapset=")
	}
	if !opts.SingleMapset && opts.Mapset != "" {
		return opts, fmt.Errorf("mapset= requires single-mapset")
	}
	for _, band := range opts.Bands {
		if !bandTokens[band] {
			return opts, fmt.Errorf("unknown band %q; valid bands are 1..11 and QA", band)
		}
	}
	if opts.TimestampOverride != "" {
		if _, err := mtl.ParseOverride(opts.TimestampOverride); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
