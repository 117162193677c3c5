package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// SubditSource resolves the ordered set of subdits for a report.
// A non-nil filterID restricts the set to that single subdit.
type SubditSource interface {
	ListOrdered(ctx context.Context, filterID *int) ([]models.Subdit, error)
}

// UnitSource resolves the ordered set of active units for a report.
// A non-nil filterID restricts the set to that single unit.
type UnitSource interface {
	ListActiveOrdered(ctx context.Context, filterID *int) ([]models.Unit, error)
}

// EntrySource fetches entries for the report window. Implementations must
// include an attachment count per entry and apply the keyword predicate
// (case-insensitive substring over description OR case number).
type EntrySource interface {
	ListForReport(ctx context.Context, start, end time.Time, subditIDs, unitIDs []int, keyword string) ([]models.RengiatEntry, error)
}

// EntryCell is the lightweight entry summary placed in grid cells.
type EntryCell struct {
	ID            int     `json:"id"`
	TimeStart     *string `json:"time_start"` // "HH:MM", nil when unscheduled
	Description   string  `json:"description"`
	HasAttachment bool    `json:"has_attachment"`
}

// UnitCell holds the entries of one unit within a subdit row.
type UnitCell struct {
	UnitID  int         `json:"unit_id"`
	Entries []EntryCell `json:"entries"`
}

// SubditRow is one row of the daily grid: a subdit with one cell per unit.
type SubditRow struct {
	SubditID   int        `json:"subdit_id"`
	SubditName string     `json:"subdit_name"`
	Cells      []UnitCell `json:"cells"`
}

// Day is one calendar day of the report, with its localized header line.
type Day struct {
	Date       string      `json:"date"` // "YYYY-MM-DD"
	HeaderLine string      `json:"header_line"`
	Rows       []SubditRow `json:"rows"`
}

// UnitHeader describes a report column.
type UnitHeader struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
}

// Payload is the complete report structure handed to the JSON view and
// the PDF exporter.
type Payload struct {
	Title string       `json:"title"`
	Units []UnitHeader `json:"units"`
	Days  []Day        `json:"days"`
}

// Builder assembles report payloads from persisted entries.
type Builder struct {
	subdits SubditSource
	units   UnitSource
	entries EntrySource
}

// NewBuilder creates a report builder reading from the given sources.
func NewBuilder(subdits SubditSource, units UnitSource, entries EntrySource) *Builder {
	return &Builder{
		subdits: subdits,
		units:   units,
		entries: entries,
	}
}

// Build produces the report grid for [start, end] inclusive. Both bounds
// are calendar dates; callers normalize them first (see ParseFilters).
// Every day in range appears in the payload, including days with no
// activity anywhere. Stripping empty days is a presentation concern left
// to the caller.
func (b *Builder) Build(ctx context.Context, start, end time.Time, subditID, unitID *int, keyword string) (*Payload, error) {
	subdits, err := b.subdits.ListOrdered(ctx, subditID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subdits: %w", err)
	}

	units, err := b.units.ListActiveOrdered(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve units: %w", err)
	}

	entries, err := b.fetchEntries(ctx, start, end, subdits, units, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}

	// Index entries by (date, subdit, unit). Bucket order is fixed
	// afterwards: scheduled entries ascending by start time, unscheduled
	// entries last, creation order breaking ties. This ordering drives
	// the printed sequence numbers, so it must stay deterministic.
	type bucketKey struct {
		date     string
		subditID int
		unitID   int
	}

	grouped := make(map[bucketKey][]models.RengiatEntry)
	for _, entry := range entries {
		key := bucketKey{
			date:     entry.EntryDate.Format("2006-01-02"),
			subditID: entry.SubditID,
			unitID:   entry.UnitID,
		}
		grouped[key] = append(grouped[key], entry)
	}

	buckets := make(map[bucketKey][]EntryCell, len(grouped))
	for key, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool {
			return chronologicallyBefore(group[i], group[j])
		})

		cells := make([]EntryCell, 0, len(group))
		for _, entry := range group {
			cells = append(cells, EntryCell{
				ID:            entry.ID,
				TimeStart:     shortTime(entry.TimeStart),
				Description:   RenderDescription(entry.Description, entry.CaseNumber),
				HasAttachment: entry.AttachmentCount > 0,
			})
		}
		buckets[key] = cells
	}

	var days []Day
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 0, 1) {
		dateKey := cursor.Format("2006-01-02")
		rows := make([]SubditRow, 0, len(subdits))

		for _, subdit := range subdits {
			cells := make([]UnitCell, 0, len(units))
			for _, unit := range units {
				entries := buckets[bucketKey{date: dateKey, subditID: subdit.ID, unitID: unit.ID}]
				if entries == nil {
					entries = []EntryCell{}
				}
				cells = append(cells, UnitCell{UnitID: unit.ID, Entries: entries})
			}

			rows = append(rows, SubditRow{
				SubditID:   subdit.ID,
				SubditName: subdit.Name,
				Cells:      cells,
			})
		}

		days = append(days, Day{
			Date:       dateKey,
			HeaderLine: FormatDayHeader(cursor),
			Rows:       rows,
		})
	}

	headers := make([]UnitHeader, 0, len(units))
	for _, unit := range units {
		headers = append(headers, UnitHeader{
			ID:         unit.ID,
			Name:       UnitDisplayName(unit.OrderIndex),
			OrderIndex: unit.OrderIndex,
		})
	}

	return &Payload{
		Title: FormatTitle(start, end),
		Units: headers,
		Days:  days,
	}, nil
}

// fetchEntries short-circuits to an empty set when either resolution set
// is empty, so no query runs for impossible filters.
func (b *Builder) fetchEntries(ctx context.Context, start, end time.Time, subdits []models.Subdit, units []models.Unit, keyword string) ([]models.RengiatEntry, error) {
	if len(subdits) == 0 || len(units) == 0 {
		return nil, nil
	}

	subditIDs := make([]int, 0, len(subdits))
	for _, s := range subdits {
		subditIDs = append(subditIDs, s.ID)
	}

	unitIDs := make([]int, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}

	return b.entries.ListForReport(ctx, start, end, subditIDs, unitIDs, keyword)
}

// RenderDescription appends the case number to the description when one
// is present.
func RenderDescription(description string, caseNumber *string) string {
	if caseNumber == nil || strings.TrimSpace(*caseNumber) == "" {
		return description
	}

	return fmt.Sprintf("%s (No. Kasus: %s)", description, *caseNumber)
}

// FilterDaysWithEntries strips days whose total entry count across all
// cells is zero. Call sites that want gap-free calendars skip this.
func FilterDaysWithEntries(days []Day) []Day {
	filtered := make([]Day, 0, len(days))
	for _, day := range days {
		if dayHasEntries(day) {
			filtered = append(filtered, day)
		}
	}
	return filtered
}

func dayHasEntries(day Day) bool {
	for _, row := range day.Rows {
		for _, cell := range row.Cells {
			if len(cell.Entries) > 0 {
				return true
			}
		}
	}
	return false
}

// chronologicallyBefore orders entries within one cell: entries with a
// start time come first (ascending), entries without one sort last, and
// creation order breaks ties.
func chronologicallyBefore(a, b models.RengiatEntry) bool {
	aHasTime := a.TimeStart != nil
	bHasTime := b.TimeStart != nil

	if aHasTime != bHasTime {
		return aHasTime
	}

	if aHasTime && *a.TimeStart != *b.TimeStart {
		return *a.TimeStart < *b.TimeStart
	}

	return a.CreatedAt.Before(b.CreatedAt)
}

// shortTime truncates "HH:MM:SS" values to minute precision.
func shortTime(t *string) *string {
	if t == nil {
		return nil
	}

	v := *t
	if len(v) > 5 {
		v = v[:5]
	}
	return &v
}
