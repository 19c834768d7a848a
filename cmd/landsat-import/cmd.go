// Copyright 2019, the landsat-import authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"
)

const version = "1.0.0"

var commands = cli.Commands{
	cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import Landsat scenes into GRASS mapsets",
		Flags:   importFlags,
		Action:  importAction,
	},
	cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List the band files of a scene without importing",
		Flags:   listFlags,
		Action:  listAction,
	},
	cli.Command{
		Name:    "count",
		Aliases: []string{"n"},
		Usage:   "Count the scenes in a pool directory",
		Flags:   countFlags,
		Action:  countAction,
	},
	cli.Command{
		Name:    "timestamps",
		Aliases: []string{"t"},
		Usage:   "Derive t.register compliant scene timestamps without importing",
		Flags:   timestampsFlags,
		Action:  timestampsAction,
	},
	cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Update the registry database schema",
		Action:  migrateDatabaseAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the landsat-import CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "landsat-import"
	app.Usage = "Import Landsat scenes into independent GRASS mapsets"
	app.Version = version
	app.Commands = commands
	return
}

func versionAction(*cli.Context) error {
	fmt.Println(version)
	return nil
}
