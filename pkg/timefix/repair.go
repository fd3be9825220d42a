// Package timefix repairs malformed time metadata found in archived
// model output and decodes numeric time coordinates into calendar dates.
//
// Files in the archive predate strict CF-convention checking and carry a
// recurring set of defects on the time variable: a misspelled "unit"
// attribute, reference dates written day-first, impossible day-zero
// dates, and a missing calendar attribute. Repair applies a fixed
// pipeline of four independent textual fixes before any date decoding;
// it is data cleaning, not exception handling.
package timefix

import (
	"regexp"
)

// UnitsAttr and friends are the CF attribute names consumed here.
const (
	UnitsAttr    = "units"
	UnitTypoAttr = "unit"
	CalendarAttr = "calendar"
)

// DefaultCalendar is injected when a time variable carries units but no
// calendar attribute. It matches the archive's prevailing convention.
// Files using a different implicit calendar are silently misread; there
// is no way to tell them apart from the metadata alone.
const DefaultCalendar = "365_day"

var (
	dayFirstDate = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
	dayZeroDate  = regexp.MustCompile(`(-\d+)-0(\s|$)`)
)

// Repair returns a copy of the time variable's attributes with the four
// normalization rules applied:
//
//  1. "unit" typo renamed to "units"
//  2. day-first reference dates rewritten to YYYY-MM-DD
//  3. day-zero reference dates bumped to day one
//  4. missing calendar attribute defaulted to 365_day
//
// The rules are order-independent apart from rule 1 feeding the rest.
func Repair(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}

	if v, ok := out[UnitTypoAttr]; ok {
		if _, has := out[UnitsAttr]; !has {
			out[UnitsAttr] = v
		}
		delete(out, UnitTypoAttr)
	}

	if units, ok := out[UnitsAttr]; ok {
		units = dayFirstDate.ReplaceAllString(units, "$3-$1-$2")
		units = dayZeroDate.ReplaceAllString(units, "$1-1$2")
		out[UnitsAttr] = units

		if _, has := out[CalendarAttr]; !has {
			out[CalendarAttr] = DefaultCalendar
		}
	}

	return out
}
