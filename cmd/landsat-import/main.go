package main

import (
	"os"

	"github.com/geodatalab/landsat-import/util"
)

var logger = util.NewLogger()

func main() {
	if err := createCliApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("landsat-import failed")
		os.Exit(1)
	}
}
