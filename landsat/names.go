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
	"strconv"
	"strings"
)

// BandID identifies a band within a scene, numerically when the filename
// carries a plain band number and by label otherwise (QA layer, thermal
// VCID channels).
type BandID struct {
	Number  int
	Label   string
	Numeric bool
}

func (b BandID) String() string {
	if b.Numeric {
		return strconv.Itoa(b.Number)
	}
	return b.Label
}

// Filename-convention table, one entry per collection tag. The legacy NLAPS
// suffix carries a trailing channel digit (B10 is band 1, single channel;
// B61/B62 are the two thermal gain channels), whereas collection era suffixes
// spell the band number directly.
var (
	numberedBandSuffix = regexp.MustCompile(`_B(\d{1,2})\.TIF$`)
	qualityBandSuffix  = regexp.MustCompile(`_BQA\.TIF$`)
	vcidBandSuffix     = regexp.MustCompile(`_B(\d)_VCID_(\d)\.TIF$`)
	nlapsBandSuffix    = regexp.MustCompile(`_B(\d)(\d)\.TIF$`)
)

// NameAndBand resolves the raster map name and the band id for a band file,
// following the filename convention of the scene's collection. The map name
// is the last underscore-separated token of the filename without extension.
func NameAndBand(collection, filename string) (string, BandID, error) {
	if strings.Contains(filename, "MTL") && strings.HasSuffix(filename, GeoTIFFExtension) {
		// seen in the wild: a metadata file delivered with a .TIF extension
		return "", BandID{}, fmt.Errorf("Detected an MTL file with the %s extension: %s; rename it to .txt and retry", GeoTIFFExtension, filename)
	}

	stem := strings.TrimSuffix(filename, GeoTIFFExtension)
	parts := strings.Split(stem, "_")
	name := parts[len(parts)-1]

	if collection == LegacyNLAPS {
		m := nlapsBandSuffix.FindStringSubmatch(filename)
		if m == nil {
			return "", BandID{}, fmt.Errorf("File %q does not follow the NLAPS band naming convention", filename)
		}
		band, _ := strconv.Atoi(m[1])
		if m[2] != "0" {
			return name, BandID{Label: m[1] + "." + m[2]}, nil
		}
		return name, BandID{Number: band, Numeric: true}, nil
	}

	if qualityBandSuffix.MatchString(filename) {
		return name, BandID{Label: "QA"}, nil
	}
	if m := vcidBandSuffix.FindStringSubmatch(filename); m != nil {
		// keep the full channel designation as the map name, B6_VCID_1 style
		name = strings.Join(parts[len(parts)-3:], "_")
		return name, BandID{Label: m[1] + "_VCID_" + m[2]}, nil
	}
	if m := numberedBandSuffix.FindStringSubmatch(filename); m != nil {
		band, _ := strconv.Atoi(m[1])
		return name, BandID{Number: band, Numeric: true}, nil
	}
	return "", BandID{}, fmt.Errorf("File %q does not follow a known Landsat band naming convention", filename)
}
