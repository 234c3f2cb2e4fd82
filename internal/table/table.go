// Package table holds the presentation rules of the inventory data table:
// keyword search, cell truncation and which row actions a status allows.
// public/js/inventory.js applies the same rules in the browser.
package table

import (
	"strings"
	"unicode/utf8"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// SearchFields are the record fields the search box matches against.
var SearchFields = []string{inventory.FieldProcessName, inventory.FieldContent, inventory.FieldLocation}

// MaxCellLength is the number of characters shown before a cell is truncated.
const MaxCellLength = 40

// Filter keeps the rows where any search field contains query, ignoring case.
// Whitespace in query is matched literally. An empty query keeps every row.
func Filter(rows []inventory.Record, query string) []inventory.Record {
	q := strings.ToLower(query)
	if q == "" {
		return rows
	}
	out := make([]inventory.Record, 0, len(rows))
	for _, r := range rows {
		for _, f := range SearchFields {
			if strings.Contains(strings.ToLower(r.String(f)), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// FilterStatus keeps the rows whose status equals status exactly. Empty keeps all.
func FilterStatus(rows []inventory.Record, status string) []inventory.Record {
	if status == "" {
		return rows
	}
	out := make([]inventory.Record, 0, len(rows))
	for _, r := range rows {
		if r.String(inventory.FieldStatus) == status {
			out = append(out, r)
		}
	}
	return out
}

// Truncate shortens s to n characters followed by an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

// Cell is one rendered table cell.
type Cell struct {
	Text    string
	Tooltip string // full text when Text was truncated
}

// CellFor renders field of r; missing or non-string fields render empty.
func CellFor(r inventory.Record, field string) Cell {
	full := r.String(field)
	short := Truncate(full, MaxCellLength)
	if short == full {
		return Cell{Text: full}
	}
	return Cell{Text: short, Tooltip: full}
}

// Actions says which row buttons are enabled. View is always available.
type Actions struct {
	View   bool
	Edit   bool
	Submit bool
}

// ActionsFor derives button state from status alone: edit is disabled once
// Approved, submit is only possible from Draft.
func ActionsFor(status string) Actions {
	return Actions{
		View:   true,
		Edit:   status != inventory.StatusApproved,
		Submit: status == inventory.StatusDraft,
	}
}

// Column is a table column: the record field and its header label.
type Column struct {
	Field string
	Label string
}

// Columns in display order.
var Columns = []Column{
	{inventory.FieldProcessName, "Process Name"},
	{inventory.FieldContent, "Content"},
	{inventory.FieldInformationController, "Information Controller"},
	{inventory.FieldMedium, "Medium"},
	{inventory.FieldLocation, "Location"},
	{inventory.FieldSecurityClassification, "Security Classification"},
	{inventory.FieldPIB, "PIB"},
	{inventory.FieldStatus, "Status"},
	{inventory.FieldLastModified, "Last Modified"},
}

// Row is a record prepared for rendering.
type Row struct {
	ID      string
	Cells   []Cell
	Status  string
	Actions Actions
}

// Rows renders records into display rows.
func Rows(recs []inventory.Record) []Row {
	out := make([]Row, 0, len(recs))
	for _, r := range recs {
		cells := make([]Cell, 0, len(Columns))
		for _, c := range Columns {
			cells = append(cells, CellFor(r, c.Field))
		}
		status := r.String(inventory.FieldStatus)
		out = append(out, Row{ID: r.ID(), Cells: cells, Status: status, Actions: ActionsFor(status)})
	}
	return out
}
