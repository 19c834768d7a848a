package main

import (
	"fmt"
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/geodatalab/landsat-import/archive"
	"github.com/geodatalab/landsat-import/ingest"
	"github.com/geodatalab/landsat-import/landsat"
	"github.com/geodatalab/landsat-import/util"
)

var listFlags = []cli.Flag{
	cli.StringFlag{Name: "scene", Usage: "Scene to list: a tar.gz file or an unpacked directory"},
	cli.StringFlag{Name: "bands", Usage: "Band(s) to select (1..11, QA); default is all bands"},
}

var countFlags = []cli.Flag{
	cli.StringFlag{Name: "pool", Usage: "Directory containing multiple unpacked Landsat scenes"},
}

var timestampsFlags = []cli.Flag{
	cli.StringFlag{Name: "scene", Usage: "One or multiple Landsat scenes, comma separated"},
	cli.StringFlag{Name: "pool", Usage: "Directory containing multiple unpacked Landsat scenes"},
	cli.StringFlag{Name: "timestamp", Usage: "Manual timestamp 'yyyy-mm-dd hh:mm:ss.ssssss +zzzz', overrides metadata"},
	cli.StringFlag{Name: "output", Usage: "Output file for t.register compliant scene timestamps"},
	cli.StringFlag{Name: "prefix", Usage: "Prefix for scene names in the timestamp output"},
	cli.BoolFlag{Name: "skip-microseconds, m", Usage: "Keep integer seconds only"},
	cli.BoolFlag{Name: "keep-going, k", Usage: "Continue with the next scene when one scene fails"},
}

// listAction prints the band files a scene would contribute, without
// touching the raster store.
func listAction(c *cli.Context) error {
	scene := c.String("scene")
	if scene == "" {
		return cli.NewExitError("scene= is required", 2)
	}

	if archive.IsArchive(scene) {
		members, err := archive.ListMembers(scene)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		for _, member := range members {
			fmt.Println(member)
		}
		return nil
	}

	collection, err := landsat.ResolveCollection(filepath.Base(scene))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	template, err := landsat.BandTemplateFor(collection)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	entries, err := os.ReadDir(scene)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	listing := make([]string, 0, len(entries))
	for _, entry := range entries {
		listing = append(listing, entry.Name())
	}

	filenames, err := landsat.SelectFilenames(splitList(c.String("bands")), listing, template)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for _, filename := range filenames {
		fmt.Println(filename)
	}
	return nil
}

// countAction prints the number of scene directories in a pool.
func countAction(c *cli.Context) error {
	pool := c.String("pool")
	if pool == "" {
		return cli.NewExitError("pool= is required", 2)
	}
	scenes, err := ingest.ScenesInPool(pool)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Printf("Number of scenes in pool: %d\n", len(scenes))
	return nil
}

// timestampsAction derives catalog lines for scenes without importing any
// bands, printing them to stdout and optionally writing them to a file.
func timestampsAction(c *cli.Context) error {
	scenes := splitList(c.String("scene"))
	pool := c.String("pool")
	if len(scenes) == 0 && pool == "" {
		return cli.NewExitError("Either scene= or pool= is required", 2)
	}

	opts := ingest.Options{
		NoImport:          true,
		SkipMicroseconds:  c.Bool("skip-microseconds"),
		TimestampOverride: c.String("timestamp"),
		CatalogPath:       c.String("output"),
		CatalogPrefix:     c.String("prefix"),
		KeepGoing:         c.Bool("keep-going"),
		GrassDatabase:     util.GetGrassDatabase(),
		GrassLocation:     util.GetGrassLocation(),
	}

	importer := ingest.New(nil, opts, logger)
	if err := importer.Run(scenes, pool); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for _, line := range importer.Catalog().Lines() {
		fmt.Println(line)
	}
	return nil
}
