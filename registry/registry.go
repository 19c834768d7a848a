// Package registry keeps an optional Postgres record of imported bands, so a
// pool of scenes can be audited or re-registered without touching GRASS.
package registry

import (
	"database/sql"
	"time"
)

// Registry records imported bands into the imported_bands table.
type Registry struct {
	db *sql.DB
}

// New wraps an open database connection.
func New(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// RecordBand upserts one imported band. Re-importing a band (overwrite runs)
// refreshes the existing row.
func (r *Registry) RecordBand(scene, mapset, band, sourceFile string, acquired time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO public.imported_bands
			(scene_id, mapset, band, source_file, acquisition_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mapset, band) DO UPDATE SET
			scene_id = EXCLUDED.scene_id,
			source_file = EXCLUDED.source_file,
			acquisition_date = EXCLUDED.acquisition_date,
			imported_at = now()`,
		scene, mapset, band, sourceFile, acquired,
	)
	return err
}

// SceneCount returns how many distinct scenes have bands recorded.
func (r *Registry) SceneCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT count(DISTINCT scene_id) FROM public.imported_bands`).Scan(&count)
	return count, err
}

// BandsForScene lists the recorded map names of a scene, import order not
// guaranteed.
func (r *Registry) BandsForScene(scene string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT band FROM public.imported_bands
		WHERE scene_id = $1
		ORDER BY band`,
		scene,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []string
	for rows.Next() {
		var band string
		if err := rows.Scan(&band); err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}
	return bands, rows.Err()
}
