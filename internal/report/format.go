// Package report builds the day-by-day, subdit-by-unit activity grid used by
// the report screen and the PDF export. The builder reads persisted entities
// through narrow source interfaces so it stays testable without a database.
package report

import (
	"fmt"
	"time"
)

// titlePrefix is the fixed heading of every generated report. The
// deployment this system serves is a single directorate, so the name is
// baked in rather than configured.
const titlePrefix = "RENGIAT DITRES PPA DAN PPO POLDA NTB"

// Indonesian weekday and month names, already uppercased since every
// rendered header is uppercase.
var dayNames = map[time.Weekday]string{
	time.Sunday:    "MINGGU",
	time.Monday:    "SENIN",
	time.Tuesday:   "SELASA",
	time.Wednesday: "RABU",
	time.Thursday:  "KAMIS",
	time.Friday:    "JUMAT",
	time.Saturday:  "SABTU",
}

var monthNames = map[time.Month]string{
	time.January:   "JANUARI",
	time.February:  "FEBRUARI",
	time.March:     "MARET",
	time.April:     "APRIL",
	time.May:       "MEI",
	time.June:      "JUNI",
	time.July:      "JULI",
	time.August:    "AGUSTUS",
	time.September: "SEPTEMBER",
	time.October:   "OKTOBER",
	time.November:  "NOVEMBER",
	time.December:  "DESEMBER",
}

// FormatLongDate renders a date as "02 JANUARI 2026".
func FormatLongDate(d time.Time) string {
	return fmt.Sprintf("%02d %s %d", d.Day(), monthNames[d.Month()], d.Year())
}

// FormatDayHeader renders the per-day section header, e.g.
// "SENIN, 02 JANUARI 2026".
func FormatDayHeader(d time.Time) string {
	return fmt.Sprintf("%s, %s", dayNames[d.Weekday()], FormatLongDate(d))
}

// FormatTitle renders the report title. A single-day report names the
// weekday; a ranged report names both boundary dates.
func FormatTitle(start, end time.Time) string {
	if sameDate(start, end) {
		return fmt.Sprintf("%s HARI %s TANGGAL %s",
			titlePrefix, dayNames[start.Weekday()], FormatLongDate(start))
	}

	return fmt.Sprintf("%s TANGGAL %s s/d %s",
		titlePrefix, FormatLongDate(start), FormatLongDate(end))
}

// UnitDisplayName renders the public unit label. Units are presented by
// their position, not their internal name.
func UnitDisplayName(orderIndex int) string {
	return fmt.Sprintf("Unit %d", orderIndex)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
