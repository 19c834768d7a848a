package ingest

import (
	"archive/tar"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/geodatalab/landsat-import/grass"
)

const (
	testSceneID       = "LC08_L1TP_161043_20150612_20170408_01_T1"
	expectedStoreTime = "12 June 2015 09:15:23.123456"
)

const testMetadata = `GROUP = L1_METADATA_FILE
  DATE_ACQUIRED = 2015-06-12
  SCENE_CENTER_TIME = "09:15:23.1234560Z"
END_GROUP = L1_METADATA_FILE
`

type storeCall struct {
	op    string
	name  string
	arg   string
	flags grass.ImportFlags
}

type mockStore struct {
	existing map[string]bool
	calls    []storeCall
}

func newMockStore(existing ...string) *mockStore {
	m := &mockStore{existing: map[string]bool{}}
	for _, name := range existing {
		m.existing[name] = true
	}
	return m
}

func (m *mockStore) EnsureMapset(name string) error {
	m.calls = append(m.calls, storeCall{op: "mapset", name: name})
	return nil
}

func (m *mockStore) RasterExists(name string) (bool, error) {
	return m.existing[name], nil
}

func (m *mockStore) ImportRaster(source, name, title string, flags grass.ImportFlags, memory int) error {
	m.calls = append(m.calls, storeCall{op: "import", name: name, arg: source, flags: flags})
	return nil
}

func (m *mockStore) LinkRaster(source, name, title string, flags grass.ImportFlags) error {
	m.calls = append(m.calls, storeCall{op: "link", name: name, arg: source, flags: flags})
	return nil
}

func (m *mockStore) SetTimestamp(name, stamp string) error {
	m.calls = append(m.calls, storeCall{op: "timestamp", name: name, arg: stamp})
	return nil
}

func (m *mockStore) ops() []string {
	ops := make([]string, len(m.calls))
	for i, call := range m.calls {
		ops[i] = call.op + " " + call.name
	}
	return ops
}

// writeTestScene lays out a scene directory with all 11 bands, the QA layer
// and an MTL metadata file.
func writeTestScene(t *testing.T, parent, sceneID string) string {
	scene := filepath.Join(parent, sceneID)
	assert.Nil(t, os.MkdirAll(scene, 0o755))
	for band := 1; band <= 11; band++ {
		name := fmt.Sprintf("%s_B%d.TIF", sceneID, band)
		assert.Nil(t, os.WriteFile(filepath.Join(scene, name), []byte("pixels"), 0o644))
	}
	assert.Nil(t, os.WriteFile(filepath.Join(scene, sceneID+"_BQA.TIF"), []byte("pixels"), 0o644))
	assert.Nil(t, os.WriteFile(filepath.Join(scene, sceneID+"_MTL.txt"), []byte(testMetadata), 0o644))
	return scene
}

// packTestScene compresses the files of a scene directory into a flat tar.gz,
// the way distribution archives are laid out.
func packTestScene(t *testing.T, sceneDir, archivePath string) {
	out, err := os.Create(archivePath)
	assert.Nil(t, err, "%v", err)
	defer out.Close()

	gzipWriter := gzip.NewWriter(out)
	tarWriter := tar.NewWriter(gzipWriter)

	entries, err := os.ReadDir(sceneDir)
	assert.Nil(t, err, "%v", err)
	for _, entry := range entries {
		content, err := os.ReadFile(filepath.Join(sceneDir, entry.Name()))
		assert.Nil(t, err, "%v", err)
		assert.Nil(t, tarWriter.WriteHeader(&tar.Header{
			Name: entry.Name(),
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err = tarWriter.Write(content)
		assert.Nil(t, err, "%v", err)
	}
	assert.Nil(t, tarWriter.Close())
	assert.Nil(t, gzipWriter.Close())
}

func TestRun_ImportsRequestedBandsInOrder(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	importer := New(store, Options{Bands: []string{"1", "2", "QA"}, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{
		"mapset " + testSceneID,
		"import B1",
		"timestamp B1",
		"import B2",
		"timestamp B2",
		"import BQA",
		"timestamp BQA",
	}, store.ops())

	for _, call := range store.calls {
		if call.op == "timestamp" {
			assert.Equal(t, expectedStoreTime, call.arg)
		}
	}
}

func TestRun_AllBandsNumericOrder(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	importer := New(store, Options{Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	var imported []string
	for _, call := range store.calls {
		if call.op == "import" {
			imported = append(imported, call.name)
		}
	}
	assert.Equal(t, []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B9", "B10", "B11", "BQA"}, imported)
}

func TestRun_SkipExistingLeavesBandUntouched(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore("B1")

	importer := New(store, Options{Bands: []string{"1", "2"}, SkipExisting: true, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{
		"mapset " + testSceneID,
		"import B2",
		"timestamp B2",
	}, store.ops(), "existing band must not be re-imported or re-stamped")
}

func TestRun_SkipExistingWithForcedTimestamp(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore("B1")

	opts := Options{Bands: []string{"1"}, SkipExisting: true, ForceTimestamp: true, Memory: 300}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{
		"mapset " + testSceneID,
		"timestamp B1",
	}, store.ops())
}

func TestRun_OverwriteReimportsExistingBand(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore("B1")

	opts := Options{Bands: []string{"1"}, SkipExisting: true, Overwrite: true, Memory: 300}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{
		"mapset " + testSceneID,
		"import B1",
		"timestamp B1",
	}, store.ops())
	assert.True(t, store.calls[1].flags.Overwrite)
}

func TestRun_LinkInsteadOfImport(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	importer := New(store, Options{Bands: []string{"1"}, Link: true, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))
	assert.Equal(t, []string{"mapset " + testSceneID, "link B1", "timestamp B1"}, store.ops())
}

func TestRun_NoTimestamp(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	importer := New(store, Options{Bands: []string{"1"}, NoTimestamp: true, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))
	assert.Equal(t, []string{"mapset " + testSceneID, "import B1"}, store.ops())
}

func TestRun_SingleMapsetPrefixesNames(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	opts := Options{Bands: []string{"1"}, SingleMapset: true, Mapset: "landsat8", Memory: 300}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{
		"mapset landsat8",
		"import " + testSceneID + "_B1",
		"timestamp " + testSceneID + "_B1",
	}, store.ops())
}

func TestRun_SpectralSets(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()

	importer := New(store, Options{Sets: []string{"tirs", "bqa"}, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	var imported []string
	for _, call := range store.calls {
		if call.op == "import" {
			imported = append(imported, call.name)
		}
	}
	assert.Equal(t, []string{"B10", "B11", "BQA"}, imported)
}

func TestRun_UnrecognizedSceneAbortsRun(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "NOT_A_SCENE")
	assert.Nil(t, os.MkdirAll(bogus, 0o755))
	good := writeTestScene(t, dir, testSceneID)
	store := newMockStore()

	// KeepGoing must not rescue an unrecognized scene name
	importer := New(store, Options{KeepGoing: true, Memory: 300}, zerolog.Nop())
	err := importer.Run([]string{bogus, good}, "")
	assert.NotNil(t, err)
	assert.Empty(t, store.calls, "no imports may happen after a run-fatal error")
}

func TestRun_KeepGoingSkipsSceneWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "LC81610432015163LGN00")
	assert.Nil(t, os.MkdirAll(broken, 0o755))
	assert.Nil(t, os.WriteFile(filepath.Join(broken, "LC81610432015163LGN00_B1.TIF"), []byte("pixels"), 0o644))
	good := writeTestScene(t, dir, testSceneID)
	store := newMockStore()

	importer := New(store, Options{Bands: []string{"1"}, KeepGoing: true, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{broken, good}, ""))

	assert.Equal(t, []string{"mapset " + testSceneID, "import B1", "timestamp B1"}, store.ops())
	assert.Len(t, importer.Catalog().Lines(), 1, "failed scene must not produce a catalog line")
}

func TestRun_MissingMetadataIsFatalForScene(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "LC81610432015163LGN00")
	assert.Nil(t, os.MkdirAll(broken, 0o755))
	store := newMockStore()

	importer := New(store, Options{Memory: 300}, zerolog.Nop())
	err := importer.Run([]string{broken}, "")
	assert.NotNil(t, err, "Scene without metadata did not cause an error")
	assert.Contains(t, err.Error(), "LC81610432015163LGN00")
}

func TestRun_TimestampOverrideSkipsMetadata(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, testSceneID)
	assert.Nil(t, os.MkdirAll(scene, 0o755))
	// no MTL file at all; override must carry the run
	assert.Nil(t, os.WriteFile(filepath.Join(scene, testSceneID+"_B1.TIF"), []byte("pixels"), 0o644))
	store := newMockStore()

	opts := Options{Bands: []string{"1"}, TimestampOverride: "2015-06-12 09:15:23.123456 +0000", Memory: 300}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Equal(t, []string{"mapset " + testSceneID, "import B1", "timestamp B1"}, store.ops())
	assert.Equal(t, expectedStoreTime, store.calls[2].arg)
}

func TestRun_PoolDirectory(t *testing.T) {
	pool := t.TempDir()
	writeTestScene(t, pool, testSceneID)
	writeTestScene(t, pool, "LC08_L1TP_161043_20150613_20170408_01_T1")
	store := newMockStore()

	importer := New(store, Options{Bands: []string{"1"}, SingleMapset: false, Memory: 300}, zerolog.Nop())
	assert.Nil(t, importer.Run(nil, pool))

	mapsets := 0
	for _, call := range store.calls {
		if call.op == "mapset" {
			mapsets++
		}
	}
	assert.Equal(t, 2, mapsets)
	assert.Len(t, importer.Catalog().Lines(), 2)
}

func TestRun_NoScenes(t *testing.T) {
	importer := New(newMockStore(), Options{}, zerolog.Nop())
	assert.NotNil(t, importer.Run(nil, ""))
}

func TestRun_CatalogFlushedToFile(t *testing.T) {
	dir := t.TempDir()
	scene := writeTestScene(t, dir, testSceneID)
	output := filepath.Join(dir, "register.txt")
	store := newMockStore()

	opts := Options{NoImport: true, CatalogPath: output, CatalogPrefix: "l8_"}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{scene}, ""))

	content, err := os.ReadFile(output)
	assert.Nil(t, err, "%v", err)
	assert.Equal(t, "l8_"+testSceneID+"|12 Jun 2015 09:15:23.123456\n", string(content))
	assert.Empty(t, store.calls, "timestamps-only runs must not touch the store")
}

type recordedBand struct {
	scene, mapset, band, source string
	acquired                    time.Time
}

type mockRecorder struct {
	bands []recordedBand
}

func (m *mockRecorder) RecordBand(scene, mapset, band, sourceFile string, acquired time.Time) error {
	m.bands = append(m.bands, recordedBand{scene, mapset, band, sourceFile, acquired})
	return nil
}

func TestRun_RecordsImportedBands(t *testing.T) {
	scene := writeTestScene(t, t.TempDir(), testSceneID)
	store := newMockStore()
	recorder := &mockRecorder{}

	importer := New(store, Options{Bands: []string{"1", "2"}, Memory: 300}, zerolog.Nop())
	importer.SetRecorder(recorder)
	assert.Nil(t, importer.Run([]string{scene}, ""))

	assert.Len(t, recorder.bands, 2)
	assert.Equal(t, testSceneID, recorder.bands[0].scene)
	assert.Equal(t, "B1", recorder.bands[0].band)
	expected := time.Date(2015, time.June, 12, 9, 15, 23, 123456000, time.UTC)
	assert.WithinDuration(t, expected, recorder.bands[0].acquired, time.Microsecond)
}

func TestRun_ExtractsArchiveAndRemoves(t *testing.T) {
	dir := t.TempDir()
	// build the archive from a scene laid out in a scratch directory
	scratch := t.TempDir()
	sceneDir := writeTestScene(t, scratch, testSceneID)
	archivePath := filepath.Join(dir, testSceneID+".tar.gz")
	packTestScene(t, sceneDir, archivePath)

	store := newMockStore()
	opts := Options{Bands: []string{"1"}, RemoveExtracted: true, Memory: 300}
	importer := New(store, opts, zerolog.Nop())
	assert.Nil(t, importer.Run([]string{archivePath}, ""))

	assert.Equal(t, []string{"mapset " + testSceneID, "import B1", "timestamp B1"}, store.ops())

	_, err := os.Stat(filepath.Join(dir, testSceneID))
	assert.True(t, os.IsNotExist(err), "extracted directory must be removed after import")
}
