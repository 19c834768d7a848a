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

package util

import (
	"os"
	"strconv"
)

// Environment variables
const (
	DATABASE_URL    = "DATABASE_URL"
	GISDBASE        = "GISDBASE"
	LOCATION_NAME   = "LOCATION_NAME"
	GRASS_OVERWRITE = "GRASS_OVERWRITE"
	LOG_LEVEL       = "LOG_LEVEL"
)

// GetDatabaseURL returns the registry connection string, empty when the
// registry is not configured.
func GetDatabaseURL() string {
	return os.Getenv(DATABASE_URL)
}

// GetGrassDatabase returns the GRASS database directory from the session
// environment, empty outside a GRASS session.
func GetGrassDatabase() string {
	gisdbase, _ := os.LookupEnv(GISDBASE)
	return gisdbase
}

// GetGrassLocation returns the GRASS location name from the session
// environment, empty outside a GRASS session.
func GetGrassLocation() string {
	location, _ := os.LookupEnv(LOCATION_NAME)
	return location
}

// IsOverwriteEnabled reflects the GRASS_OVERWRITE session switch.
func IsOverwriteEnabled() bool {
	overwrite, err := strconv.ParseBool(os.Getenv(GRASS_OVERWRITE))
	return err == nil && overwrite
}

// GetLogLevel returns the configured log level name, defaulting to info.
func GetLogLevel() string {
	if level, ok := os.LookupEnv(LOG_LEVEL); ok {
		return level
	}
	return "info"
}
