// Package export renders locator strategies and inspection history as
// JSON or CSV for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/locateflow/locateflow/internal/domain"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string from user input.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", domain.NewValidation("unsupported export format: " + s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// strategyHeader is the CSV column layout for strategy exports.
var strategyHeader = []string{
	"type", "selector", "score", "is_unique", "is_stable", "warnings", "explanation",
}

// StrategiesJSON writes the strategies as an indented JSON array.
func StrategiesJSON(w io.Writer, strategies []domain.LocatorStrategy) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(strategies)
}

// StrategiesCSV writes the strategies as RFC 4180 CSV with a header row.
func StrategiesCSV(w io.Writer, strategies []domain.LocatorStrategy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strategyHeader); err != nil {
		return err
	}
	for _, s := range strategies {
		row := []string{
			string(s.Type),
			s.Selector,
			strconv.Itoa(s.Confidence.Score),
			strconv.FormatBool(s.IsUnique),
			strconv.FormatBool(s.IsStable),
			strings.Join(s.Confidence.Warnings, "; "),
			s.Explanation,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// recordHeader is the CSV column layout for history exports.
var recordHeader = []string{
	"id", "page_url", "element_tag", "best_selector", "best_type", "best_score", "strategies", "created_at",
}

// RecordsJSON writes inspection records as an indented JSON array.
func RecordsJSON(w io.Writer, records []*domain.InspectionRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// RecordsCSV writes one summary row per inspection record.
func RecordsCSV(w io.Writer, records []*domain.InspectionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ID.String(),
			rec.PageURL,
			rec.Element.Tag,
			rec.BestSelector,
			string(rec.BestType),
			strconv.Itoa(rec.BestScore),
			strconv.Itoa(len(rec.Strategies)),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AriaJSON writes an accessibility snapshot as indented JSON.
func AriaJSON(w io.Writer, snap *domain.AriaSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ariaHeader is the CSV column layout for accessibility snapshot exports.
var ariaHeader = []string{"field", "value"}

// AriaCSV writes an accessibility snapshot as field,value rows. Map-backed
// fields are emitted in sorted key order so output is deterministic.
func AriaCSV(w io.Writer, snap *domain.AriaSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ariaHeader); err != nil {
		return err
	}
	rows := [][]string{
		{"element", snap.Element},
		{"role", snap.Role},
		{"accessible_name", snap.AccessibleName},
		{"accessible_description", snap.AccessibleDescription},
		{"hierarchy", strings.Join(snap.Hierarchy, " > ")},
	}
	for _, name := range sortedKeys(snap.AriaAttributes) {
		rows = append(rows, []string{"attr:" + name, snap.AriaAttributes[name]})
	}
	for _, name := range sortedKeys(snap.States) {
		rows = append(rows, []string{"state:" + name, strconv.FormatBool(snap.States[name])})
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Strategies dispatches a strategy export on the format.
func Strategies(w io.Writer, f Format, strategies []domain.LocatorStrategy) error {
	if f == FormatCSV {
		return StrategiesCSV(w, strategies)
	}
	return StrategiesJSON(w, strategies)
}

// Records dispatches a history export on the format.
func Records(w io.Writer, f Format, records []*domain.InspectionRecord) error {
	if f == FormatCSV {
		return RecordsCSV(w, records)
	}
	return RecordsJSON(w, records)
}

// Aria dispatches an accessibility snapshot export on the format.
func Aria(w io.Writer, f Format, snap *domain.AriaSnapshot) error {
	if f == FormatCSV {
		return AriaCSV(w, snap)
	}
	return AriaJSON(w, snap)
}
