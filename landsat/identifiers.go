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

package landsat

import (
	"fmt"
	"regexp"
)

// Collection tags for the Landsat product naming conventions the importer
// understands. Reference: https://www.usgs.gov/landsat-missions/landsat-collection-1
const (
	// Collection1 covers Collection 1/2 product identifiers,
	// e.g. LC08_L1TP_161043_20150612_20170408_01_T1
	Collection1 = "collection1"

	// PreCollection covers pre-collection scene identifiers,
	// e.g. LC81610432015163LGN00
	PreCollection = "precollection"

	// LegacyNLAPS covers NLAPS/GLOVIS era deliveries whose band files carry a
	// trailing channel digit, e.g. L71161043_04320050609_B10.TIF (band 1)
	LegacyNLAPS = "nlaps"
)

// GeoTIFFExtension is the expected extension of Landsat band files.
const GeoTIFFExtension = ".TIF"

// sceneTemplates is tried in order; first full match wins.
var sceneTemplates = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{Collection1, regexp.MustCompile(`^L[COTEM]0[1-9]_L[0-9A-Z]{3}_\d{6}_\d{8}_\d{8}_\d{2}_(RT|T1|T2)$`)},
	{PreCollection, regexp.MustCompile(`^L[COTEM][1-8]\d{13}[A-Z]{3}\d{2}$`)},
	{LegacyNLAPS, regexp.MustCompile(`^L[ET]?[1-7]\d{7}_\d{11}$`)},
}

// bandTemplates maps a collection tag to the filename pattern used for band
// selection. The %s placeholder receives a band token such as "1", "10" or "QA".
var bandTemplates = map[string]string{
	Collection1:   `.*_B%s\.TIF$`,
	PreCollection: `.*_B%s\.TIF$`,
	LegacyNLAPS:   `.*_B%s[0-9]\.TIF$`,
}

// UnrecognizedSceneError reports a scene name matching no known Landsat
// product naming convention. No band template can be chosen without one, so
// this aborts the whole run.
type UnrecognizedSceneError struct {
	Scene string
}

func (e UnrecognizedSceneError) Error() string {
	return fmt.Sprintf("Scene %q does not match any known Landsat product file name pattern", e.Scene)
}

// UnsupportedCollectionError reports a collection tag without a registered
// band filename template. This is a configuration defect.
type UnsupportedCollectionError struct {
	Collection string
}

func (e UnsupportedCollectionError) Error() string {
	return fmt.Sprintf("No band file name template registered for collection %q", e.Collection)
}

// ResolveCollection identifies the product collection of a Landsat scene by
// matching its base name against the known scene name templates.
func ResolveCollection(sceneName string) (string, error) {
	for _, t := range sceneTemplates {
		if t.pattern.MatchString(sceneName) {
			return t.tag, nil
		}
	}
	return "", UnrecognizedSceneError{Scene: sceneName}
}

// BandTemplateFor returns the band filename pattern template for a collection
// tag previously returned by ResolveCollection.
func BandTemplateFor(collection string) (string, error) {
	template, ok := bandTemplates[collection]
	if !ok {
		return "", UnsupportedCollectionError{Collection: collection}
	}
	return template, nil
}
