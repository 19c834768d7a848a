package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/lib/pq"

	"github.com/geodatalab/landsat-import/util"
)

//getDbConnection opens a new registry database connection.
func getDbConnection() (*sql.DB, error) {
	connStr := util.GetDatabaseURL()
	if connStr == "" {
		return nil, errors.New("No registry database configured in DATABASE_URL")
	}

	// XXX: pq expects SSL to be enabled if not explicitly disabled; we need to explicitly disable it
	dbURI, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("Invalid DATABASE_URL: %w", err)
	}
	params := dbURI.Query()
	params.Set("sslmode", "disable")
	dbURI.RawQuery = params.Encode()

	logger.Info().Msgf("Creating database connection at: `%s`", dbURI.Redacted())
	db, err := sql.Open("postgres", dbURI.String())
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, err
}

var getDbConnectionFunc = getDbConnection
