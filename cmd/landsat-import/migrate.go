package main

import (
	"github.com/pressly/goose"
	cli "gopkg.in/urfave/cli.v1"

	_ "github.com/geodatalab/landsat-import/migrations"
)

func migrateDatabaseAction(*cli.Context) error {
	database, err := getDbConnectionFunc()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer database.Close()

	if err := goose.Run("up", database, "."); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}
