package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

//Up00001 creates the imported bands registry table.
func Up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE public.imported_bands
		(
			scene_id text COLLATE pg_catalog."default" NOT NULL,
			mapset text COLLATE pg_catalog."default" NOT NULL,
			band text COLLATE pg_catalog."default" NOT NULL,
			source_file text COLLATE pg_catalog."default" NOT NULL,
			acquisition_date timestamp without time zone NOT NULL,
			imported_at timestamp with time zone NOT NULL DEFAULT now(),
			CONSTRAINT "imported_bands_pk_mapset_band" PRIMARY KEY (mapset, band)
		)
		WITH (
			OIDS = FALSE
		);

		CREATE INDEX idx_imported_bands_scene
		ON public.imported_bands (scene_id);
		`)
	return err
}

//Down00001 undoes the db changes.
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS public.imported_bands;`)
	return err
}
