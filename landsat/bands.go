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
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// spectralSets maps a named spectral subset to the band tokens it expands to.
// Most subsets target Landsat 8 (OLI/TIRS) band numbering.
var spectralSets = map[string][]string{
	"all":          {"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "QA"},
	"arvi":         {"2", "4", "5"},
	"avi":          {"4", "5"},
	"bqa":          {"QA"},
	"bsi":          {"2", "4", "5", "6"},
	"evi":          {"2", "4", "5"},
	"gci":          {"3", "5"},
	"gndvi":        {"3", "5"},
	"infrared":     {"5", "6", "7"},
	"msi":          {"5", "6"},
	"nbr":          {"5", "7"},
	"ndgi":         {"3", "4"},
	"ndmi":         {"5", "6"},
	"ndsi":         {"3", "6"},
	"ndvi":         {"4", "5"},
	"ndwi":         {"3", "5"},
	"oli":          {"1", "2", "3", "4", "5", "6", "7", "8", "9"},
	"panchromatic": {"8"},
	"savi":         {"4", "5"},
	"shortwave":    {"6", "7"},
	"sipi":         {"1", "4", "5"},
	"tirs":         {"10", "11"},
	"visible":      {"2", "3", "4"},
}

// ExpandSets resolves named spectral sets to the union of their band tokens.
// Duplicate tokens across overlapping sets collapse to a single occurrence.
func ExpandSets(names []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, name := range names {
		bands, ok := spectralSets[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("Unknown spectral set %q", name)
		}
		for _, band := range bands {
			seen[band] = true
		}
	}
	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return lessBandToken(tokens[i], tokens[j])
	})
	return tokens, nil
}

func lessBandToken(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true // numeric tokens before QA and friends
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// SelectFilenames resolves the band files to import from a scene's directory
// listing. An empty token list is the "all bands" case and selects every file
// with the GeoTIFF extension. Otherwise the filename pattern template is
// instantiated once per band token and matched against every listing entry.
// The result is deduplicated and sorted by band number.
func SelectFilenames(tokens []string, listing []string, template string) ([]string, error) {
	selected := make(map[string]bool)

	if len(tokens) == 0 {
		for _, filename := range listing {
			if filepath.Ext(filename) == GeoTIFFExtension {
				selected[filename] = true
			}
		}
	} else {
		for _, token := range tokens {
			pattern, err := regexp.Compile(fmt.Sprintf(template, regexp.QuoteMeta(token)))
			if err != nil {
				return nil, fmt.Errorf("Band pattern for token %q does not compile: %v", token, err)
			}
			for _, filename := range listing {
				if pattern.MatchString(filename) {
					selected[filename] = true
				}
			}
		}
	}

	filenames := make([]string, 0, len(selected))
	for filename := range selected {
		filenames = append(filenames, filename)
	}
	return SortBandFilenames(filenames), nil
}

// SortBandFilenames orders band filenames by the integer band number found in
// the _B<digits> segment before the extension. Filenames without a parseable
// number (the QA layer) sort after all numeric ones; ties break lexically.
// The ordering is stable and idempotent.
func SortBandFilenames(filenames []string) []string {
	sort.SliceStable(filenames, func(i, j int) bool {
		ni, nj := bandSortKey(filenames[i]), bandSortKey(filenames[j])
		if ni != nj {
			return ni < nj
		}
		return filenames[i] < filenames[j]
	})
	return filenames
}

func bandSortKey(filename string) float64 {
	_, after, found := strings.Cut(filename, "_B")
	if !found {
		return math.Inf(1)
	}
	digits, _, _ := strings.Cut(after, ".")
	number, err := strconv.Atoi(digits)
	if err != nil {
		return math.Inf(1)
	}
	return float64(number)
}
