package report

import (
	"strconv"
	"strings"
	"time"
)

// Filters holds normalized report query parameters.
type Filters struct {
	StartDate time.Time
	EndDate   time.Time
	SubditID  *int
	UnitID    *int
	Keyword   string
}

// ParseFilters normalizes raw query parameters into report filters.
//
// Date handling is forgiving rather than strict: an absent or unparseable
// start date falls back to today (in the given location), an absent or
// unparseable end date falls back to the start date, and an end date
// before the start date is clamped to the start date. No error is ever
// surfaced for bad date input.
func ParseFilters(startRaw, endRaw, subditRaw, unitRaw, keywordRaw string, now time.Time) Filters {
	start, err := time.ParseInLocation("2006-01-02", startRaw, now.Location())
	if err != nil {
		start = truncateToDate(now)
	}

	end, err := time.ParseInLocation("2006-01-02", endRaw, now.Location())
	if err != nil || end.Before(start) {
		end = start
	}

	return Filters{
		StartDate: start,
		EndDate:   end,
		SubditID:  parseOptionalID(subditRaw),
		UnitID:    parseOptionalID(unitRaw),
		Keyword:   strings.TrimSpace(keywordRaw),
	}
}

// IsSingleDay reports whether the filters cover exactly one calendar day.
func (f Filters) IsSingleDay() bool {
	return sameDate(f.StartDate, f.EndDate)
}

// ExportFileName derives the download name for a PDF export:
// report-YYYYMMDD.pdf for a single day, report-YYYYMMDD-YYYYMMDD.pdf for
// a range.
func (f Filters) ExportFileName() string {
	if f.IsSingleDay() {
		return "report-" + f.StartDate.Format("20060102") + ".pdf"
	}

	return "report-" + f.StartDate.Format("20060102") + "-" + f.EndDate.Format("20060102") + ".pdf"
}

func parseOptionalID(raw string) *int {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
