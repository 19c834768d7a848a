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

package mtl

import (
	"fmt"
	"time"
)

// monthNames spells out month numbers for the raster store timestamp format.
var monthNames = map[time.Month]string{
	time.January:   "January",
	time.February:  "February",
	time.March:     "March",
	time.April:     "April",
	time.May:       "May",
	time.June:      "June",
	time.July:      "July",
	time.August:    "August",
	time.September: "September",
	time.October:   "October",
	time.November:  "November",
	time.December:  "December",
}

const reportDateLayout = "02 Jan 2006"

// timeOfDay renders HH:MM:SS[.ffffff] from the normalized clock fields. All
// three output formats share this rendering so they stay mutually consistent.
func (ts Timestamp) timeOfDay() string {
	return fmt.Sprintf("%02d:%02d:%s", ts.Hours, ts.Minutes, ts.Seconds)
}

// HumanReport renders the timestamp for console progress output,
// e.g. "12 Jun 2015  09:15:23.123456 +0000".
func (ts Timestamp) HumanReport() string {
	return fmt.Sprintf("%s  %s %s", ts.Date.Format(reportDateLayout), ts.timeOfDay(), ts.Timezone)
}

// CatalogLine renders one scene registration line for bulk time-series
// catalog files, e.g. "p123_LC08...|12 Jun 2015 09:15:23.123456".
func (ts Timestamp) CatalogLine(prefix, scene string) string {
	return fmt.Sprintf("%s%s|%s %s", prefix, scene, ts.Date.Format(reportDateLayout), ts.timeOfDay())
}

// StoreTimestamp renders the day-month-year string passed verbatim to the
// raster store's timestamp call, e.g. "12 June 2015 09:15:23.123456".
func (ts Timestamp) StoreTimestamp() string {
	return fmt.Sprintf("%s %s %d %s",
		ts.Date.Format("02"), monthNames[ts.Date.Month()], ts.Date.Year(), ts.timeOfDay())
}
