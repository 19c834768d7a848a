// Package ingest orchestrates the per-scene import loop: collection
// resolution, timestamp derivation, band selection and the calls into the
// raster store. Scenes are processed one at a time, fully, in order.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/geodatalab/landsat-import/archive"
	"github.com/geodatalab/landsat-import/grass"
	"github.com/geodatalab/landsat-import/landsat"
	"github.com/geodatalab/landsat-import/mtl"
)

// BandRecorder persists a record of each imported band. Optional; a nil
// recorder disables recording.
type BandRecorder interface {
	RecordBand(scene, mapset, band, sourceFile string, acquired time.Time) error
}

// Importer drives scene imports against a raster store.
type Importer struct {
	store    grass.Store
	recorder BandRecorder
	opts     Options
	log      zerolog.Logger
	catalog  *Catalog
}

// New builds an Importer for one run.
func New(store grass.Store, opts Options, log zerolog.Logger) *Importer {
	return &Importer{
		store:   store,
		opts:    opts,
		log:     log,
		catalog: NewCatalog(opts.CatalogPrefix),
	}
}

// SetRecorder enables persisting imported bands through the given recorder.
func (imp *Importer) SetRecorder(recorder BandRecorder) {
	imp.recorder = recorder
}

// Catalog exposes the accumulated registration lines of the run.
func (imp *Importer) Catalog() *Catalog {
	return imp.catalog
}

// Run processes the given scene paths plus every scene directory found in
// pool, sequentially. Archives are extracted next to themselves first.
// Unrecognized-scene and configuration errors abort the run; scene-fatal
// errors abort it too unless KeepGoing is set. The catalog is flushed once,
// at the end, for the scenes that derived a timestamp successfully.
func (imp *Importer) Run(scenes []string, pool string) error {
	paths := append([]string(nil), scenes...)
	if pool != "" {
		pooled, err := ScenesInPool(pool)
		if err != nil {
			return err
		}
		paths = append(paths, pooled...)
	}
	if len(paths) == 0 {
		return errors.New("No scenes to import")
	}

	for _, path := range paths {
		scenePath, extracted, err := imp.prepareScene(path)
		if err == nil {
			err = imp.importScene(scenePath)
		}
		if err != nil {
			if abortsRun(err) || !imp.opts.KeepGoing {
				return fmt.Errorf("scene %s: %w", filepath.Base(scenePath), err)
			}
			imp.log.Warn().Str("scene", filepath.Base(scenePath)).Err(err).Msg("Skipping scene")
			continue
		}
		if extracted && imp.opts.RemoveExtracted {
			imp.log.Debug().Str("directory", scenePath).Msg("Removing unpacked source directory")
			if err := os.RemoveAll(scenePath); err != nil {
				return err
			}
		}
	}

	return imp.catalog.Flush(imp.opts.CatalogPath)
}

// prepareScene extracts an archive scene in place and returns the directory
// to import from.
func (imp *Importer) prepareScene(path string) (string, bool, error) {
	if !archive.IsArchive(path) {
		return path, false, nil
	}
	destination := filepath.Join(filepath.Dir(path), archive.SceneName(path))
	imp.log.Info().Str("archive", path).Msg("Extracting files from tar.gz file")
	if err := archive.ExtractAll(path, destination); err != nil {
		return destination, true, err
	}
	return destination, true, nil
}

// abortsRun reports whether an error poisons the whole batch rather than a
// single scene.
func abortsRun(err error) bool {
	var unrecognized landsat.UnrecognizedSceneError
	var unsupported landsat.UnsupportedCollectionError
	return errors.As(err, &unrecognized) || errors.As(err, &unsupported)
}

// ScenesInPool lists the scene subdirectories of a pool directory.
func ScenesInPool(pool string) ([]string, error) {
	entries, err := os.ReadDir(pool)
	if err != nil {
		return nil, fmt.Errorf("Could not list pool directory %q: %w", pool, err)
	}
	var scenes []string
	for _, entry := range entries {
		if entry.IsDir() {
			scenes = append(scenes, filepath.Join(pool, entry.Name()))
		}
	}
	return scenes, nil
}

func (imp *Importer) importScene(scenePath string) error {
	sceneName := filepath.Base(scenePath)

	collection, err := landsat.ResolveCollection(sceneName)
	if err != nil {
		return err
	}
	template, err := landsat.BandTemplateFor(collection)
	if err != nil {
		return err
	}

	timestamp, metafile, err := imp.deriveTimestamp(scenePath)
	if err != nil {
		return err
	}
	imp.log.Info().Str("scene", sceneName).Msgf("Acquired %s", timestamp.HumanReport())
	imp.catalog.Add(sceneName, timestamp)

	if imp.opts.NoImport {
		return nil
	}

	filenames, err := imp.selectFilenames(scenePath, template)
	if err != nil {
		return err
	}
	if len(filenames) == 0 {
		return fmt.Errorf("No band files found in scene directory %q", scenePath)
	}

	mapset := sceneName
	if imp.opts.SingleMapset {
		mapset = imp.opts.Mapset
	}
	imp.log.Info().Str("mapset", mapset).Msg("Target mapset")
	if err := imp.store.EnsureMapset(mapset); err != nil {
		return err
	}

	stamp := timestamp.StoreTimestamp()
	acquired := timestamp.Time()
	for _, filename := range filenames {
		if err := imp.importBand(collection, scenePath, filename, mapset, stamp, acquired); err != nil {
			return err
		}
	}

	if imp.opts.CopyMetadata && metafile != "" {
		if dir := imp.cellMiscDir(mapset); dir != "" {
			if err := mtl.CopyToCellMisc(metafile, dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// deriveTimestamp returns the scene timestamp and, when it came from the
// metadata file, the metadata file path.
func (imp *Importer) deriveTimestamp(scenePath string) (mtl.Timestamp, string, error) {
	if imp.opts.TimestampOverride != "" {
		ts, err := mtl.ParseOverride(imp.opts.TimestampOverride)
		return ts, "", err
	}
	metafile, err := mtl.FindMetadataFile(scenePath)
	if err != nil {
		return mtl.Timestamp{}, "", err
	}
	ts, err := mtl.ParseFile(metafile, imp.opts.SkipMicroseconds)
	return ts, metafile, err
}

func (imp *Importer) selectFilenames(scenePath, template string) ([]string, error) {
	tokens := append([]string(nil), imp.opts.Bands...)
	if len(imp.opts.Sets) > 0 {
		expanded, err := landsat.ExpandSets(imp.opts.Sets)
		if err != nil {
			return nil, err
		}
		tokens = mergeTokens(tokens, expanded)
	}

	entries, err := os.ReadDir(scenePath)
	if err != nil {
		return nil, fmt.Errorf("Could not list scene directory %q: %w", scenePath, err)
	}
	listing := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			listing = append(listing, entry.Name())
		}
	}

	return landsat.SelectFilenames(tokens, listing, template)
}

func mergeTokens(explicit, expanded []string) []string {
	seen := make(map[string]bool, len(explicit))
	merged := append([]string(nil), explicit...)
	for _, token := range explicit {
		seen[token] = true
	}
	for _, token := range expanded {
		if !seen[token] {
			seen[token] = true
			merged = append(merged, token)
		}
	}
	return merged
}

func (imp *Importer) importBand(collection, scenePath, filename, mapset, stamp string, acquired time.Time) error {
	sceneName := filepath.Base(scenePath)
	name, band, err := landsat.NameAndBand(collection, filename)
	if err != nil {
		return err
	}
	if imp.opts.SingleMapset {
		// all scenes share one mapset, prefix map names with the scene id
		name = sceneName + "_" + name
	}
	title := fmt.Sprintf("band %s", band)
	source := filepath.Join(scenePath, filename)
	flags := grass.ImportFlags{
		OverrideProjection: imp.opts.OverrideProjection,
		Overwrite:          imp.opts.Overwrite,
	}

	exists, err := imp.store.RasterExists(name)
	if err != nil {
		return err
	}

	if imp.opts.SkipExisting && exists && !imp.opts.Overwrite {
		if imp.opts.ForceTimestamp && !imp.opts.NoTimestamp {
			if err := imp.store.SetTimestamp(name, stamp); err != nil {
				return err
			}
			imp.log.Info().Str("band", name).Msg("Forced timestamping")
		}
		imp.log.Info().Str("band", band.String()).Str("file", filename).Msg("Exists, skipping")
		return nil
	}
	if exists && imp.opts.Overwrite {
		imp.log.Info().Str("band", band.String()).Str("file", filename).Msg("Exists, overwriting")
	} else {
		imp.log.Info().Str("band", band.String()).Str("file", filename).Msg("Importing")
	}

	if imp.opts.Link {
		err = imp.store.LinkRaster(source, name, title, flags)
	} else {
		err = imp.store.ImportRaster(source, name, title, flags, imp.opts.Memory)
	}
	if err != nil {
		return err
	}

	if !imp.opts.NoTimestamp {
		if err := imp.store.SetTimestamp(name, stamp); err != nil {
			return err
		}
	}

	if imp.recorder != nil {
		if err := imp.recorder.RecordBand(sceneName, mapset, name, source, acquired); err != nil {
			return err
		}
	}
	return nil
}

// cellMiscDir resolves the mapset's cell_misc directory from the configured
// GRASS database layout; empty when the layout is not configured.
func (imp *Importer) cellMiscDir(mapset string) string {
	if imp.opts.GrassDatabase == "" || imp.opts.GrassLocation == "" {
		return ""
	}
	return filepath.Join(imp.opts.GrassDatabase, imp.opts.GrassLocation, mapset, "cell_misc")
}
