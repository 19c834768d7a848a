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

// Package mtl derives acquisition timestamps from Landsat MTL metadata files
// and renders them in the layouts the importer needs.
package mtl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Metadata keys whose lines carry the acquisition date and time. Key names
// differ across Landsat 5/7/8 metadata formats.
var (
	dateKeys = []string{"DATE_ACQUIRED", "ACQUISITION_DATE"}
	timeKeys = []string{"SCENE_CENTER_TIME", "SCENE_CENTER_SCAN_TIME"}
)

// ZeroTimezone is the offset assumed when the metadata carries none.
const ZeroTimezone = "+0000"

const (
	dateLayout         = "2006-01-02"
	timeLayout         = "15:04:05"
	timeLayoutMicros   = "15:04:05.000000"
	fractionalDigits   = 7 // MTL sub-second fields carry seven digits
	secondsPaddedWidth = 2
	microsPerSecond    = 1000000
)

// Timestamp is the validated acquisition timestamp of a scene. Seconds are
// kept as the normalized string rendering ("23" or "23.123456") so that every
// formatter derives from the same value instead of re-parsing text.
type Timestamp struct {
	Date     time.Time
	Hours    int
	Minutes  int
	Seconds  string
	Timezone string
}

// Time assembles the timestamp into a time.Time, mainly for storage.
func (ts Timestamp) Time() time.Time {
	sec, frac := 0, 0.0
	if whole, fraction, found := strings.Cut(ts.Seconds, "."); found {
		sec, _ = strconv.Atoi(whole)
		frac, _ = strconv.ParseFloat("0."+fraction, 64)
	} else {
		sec, _ = strconv.Atoi(ts.Seconds)
	}
	loc := time.UTC
	if zone, err := time.Parse("-0700", ts.Timezone); err == nil {
		loc = zone.Location()
	}
	return time.Date(
		ts.Date.Year(), ts.Date.Month(), ts.Date.Day(),
		ts.Hours, ts.Minutes, sec, int(frac*float64(time.Second)), loc,
	)
}

// MalformedTimestampError reports a metadata date or time field that failed
// validation, with the offending value for context.
type MalformedTimestampError struct {
	Field string
	Value string
}

func (e MalformedTimestampError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("Metadata file carries no valid %s field", e.Field)
	}
	return fmt.Sprintf("Malformed %s field in metadata: %q", e.Field, e.Value)
}

// ParseFile reads a scene's MTL metadata file and extracts the acquisition
// timestamp. The file handle is released on every path, including mid-parse
// failures. skipMicroseconds keeps integer seconds only.
func ParseFile(path string, skipMicroseconds bool) (Timestamp, error) {
	metadata, err := os.Open(path)
	if err != nil {
		return Timestamp{}, fmt.Errorf("Could not open metadata file: %w", err)
	}
	defer metadata.Close()
	return parse(metadata, skipMicroseconds)
}

func parse(r io.Reader, skipMicroseconds bool) (Timestamp, error) {
	ts := Timestamp{Timezone: ZeroTimezone}
	var haveDate, haveTime bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if containsAny(line, dateKeys) {
			value, ok := valueAfterEquals(line)
			if !ok {
				return Timestamp{}, MalformedTimestampError{Field: "date", Value: line}
			}
			date, err := time.Parse(dateLayout, value)
			if err != nil {
				return Timestamp{}, MalformedTimestampError{Field: "date", Value: value}
			}
			ts.Date = date
			haveDate = true
		}

		if containsAny(line, timeKeys) {
			line = strings.ReplaceAll(line, `"`, "")
			if strings.HasSuffix(line, "Z") {
				ts.Timezone = ZeroTimezone
			}
			value, ok := valueAfterEquals(strings.ReplaceAll(line, "Z", ""))
			if !ok {
				return Timestamp{}, MalformedTimestampError{Field: "time", Value: line}
			}
			if err := ts.setClock(value, skipMicroseconds); err != nil {
				return Timestamp{}, err
			}
			haveTime = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Timestamp{}, fmt.Errorf("Could not read metadata file: %w", err)
	}

	if !haveDate {
		return Timestamp{}, MalformedTimestampError{Field: "date"}
	}
	if !haveTime {
		return Timestamp{}, MalformedTimestampError{Field: "time"}
	}
	return ts, nil
}

// setClock parses an HH:MM:SS[.fffffff] value and normalizes the seconds
// rendering. Fractional digits are parts of 10,000,000; they are converted to
// a microsecond count and re-rendered with exactly six decimal digits and a
// two-digit integer part (9.5 becomes 09.500000).
func (ts *Timestamp) setClock(value string, skipMicroseconds bool) error {
	whole, fraction, hasFraction := strings.Cut(value, ".")

	clock := strings.Split(whole, ":")
	if len(clock) != 3 {
		return MalformedTimestampError{Field: "time", Value: value}
	}
	hours, errH := strconv.Atoi(clock[0])
	minutes, errM := strconv.Atoi(clock[1])
	seconds, errS := strconv.Atoi(clock[2])
	if errH != nil || errM != nil || errS != nil {
		return MalformedTimestampError{Field: "time", Value: value}
	}

	rendered := fmt.Sprintf("%0*d", secondsPaddedWidth, seconds)
	if hasFraction && !skipMicroseconds {
		micros, err := microsecondsFromFraction(fraction)
		if err != nil {
			return MalformedTimestampError{Field: "time", Value: value}
		}
		// rounding half up can carry a fraction like .9999995 into the
		// next second, minute or hour
		if micros == microsPerSecond {
			micros = 0
			seconds++
			if seconds == 60 {
				seconds = 0
				minutes++
				if minutes == 60 {
					minutes = 0
					hours++
				}
			}
		}
		rendered = fmt.Sprintf("%0*d.%06d", secondsPaddedWidth, seconds, micros)
	}

	layout := timeLayout
	if strings.Contains(rendered, ".") {
		layout = timeLayoutMicros
	}
	assembled := fmt.Sprintf("%02d:%02d:%s", hours, minutes, rendered)
	if _, err := time.Parse(layout, assembled); err != nil {
		return MalformedTimestampError{Field: "time", Value: assembled}
	}

	ts.Hours = hours
	ts.Minutes = minutes
	ts.Seconds = rendered
	return nil
}

// microsecondsFromFraction converts MTL fractional-second digits (parts of
// 10,000,000) to microseconds, rounding half up.
func microsecondsFromFraction(digits string) (int, error) {
	if len(digits) > fractionalDigits {
		digits = digits[:fractionalDigits]
	}
	padded := digits + strings.Repeat("0", fractionalDigits-len(digits))
	value, err := strconv.Atoi(padded)
	if err != nil {
		return 0, err
	}
	return (value + 5) / 10, nil
}

func containsAny(line string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(line, key) {
			return true
		}
	}
	return false
}

func valueAfterEquals(line string) (string, bool) {
	_, value, found := strings.Cut(line, "=")
	if !found {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// Layouts accepted for a manually supplied timestamp, most specific first,
// multi-layout fallback style. time.Parse accepts a fractional second of any
// width after the seconds field even when the layout carries none, so these
// two cover 'yyyy-mm-dd hh:mm:ss[.f...] [+zzzz]'.
var overrideLayouts = []struct {
	layout  string
	hasZone bool
}{
	{"2006-01-02 15:04:05 -0700", true},
	{"2006-01-02 15:04:05", false},
}

// ParseOverride builds a Timestamp from a user-supplied
// 'yyyy-mm-dd hh:mm:ss[.ffffff] [+zzzz]' string, bypassing metadata parsing.
func ParseOverride(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, l := range overrideLayouts {
		t, err := time.Parse(l.layout, value)
		if err != nil {
			continue
		}
		ts := Timestamp{
			Date:     time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Hours:    t.Hour(),
			Minutes:  t.Minute(),
			Seconds:  fmt.Sprintf("%02d", t.Second()),
			Timezone: ZeroTimezone,
		}
		if strings.Contains(value, ".") {
			ts.Seconds = fmt.Sprintf("%02d.%06d", t.Second(), t.Nanosecond()/1000)
		}
		if l.hasZone {
			ts.Timezone = t.Format("-0700")
		}
		return ts, nil
	}
	return Timestamp{}, MalformedTimestampError{Field: "timestamp", Value: value}
}
