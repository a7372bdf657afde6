// Package tui renders the address book in a terminal and asks the user for
// confirmations and record input.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/reconciler"
)

// NoEntries is shown in place of an empty table.
const NoEntries = "no entries"

var (
	faint  = lipgloss.NewStyle().Faint(true)
	header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell   = lipgloss.NewStyle().Padding(0, 1)
	added  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	gone   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Table renders records as a table, filtered and paginated.
type Table struct {
	Out      io.Writer
	Filter   string // case-insensitive substring matched against keys and fields
	PageSize int    // 0 shows every entry
	Page     int    // 1-based
}

var _ reconciler.Patcher = (*Table)(nil)

// Render writes the current page of the view model records.
func (t *Table) Render(vm *reconciler.ViewModel) {
	keys := Matching(vm.Records, t.Filter)
	if len(keys) == 0 {
		fmt.Fprintln(t.Out, faint.Render(NoEntries))
		return
	}

	page, pages := t.page(len(keys))
	if t.PageSize > 0 {
		start := (page - 1) * t.PageSize
		keys = keys[start:min(start+t.PageSize, len(keys))]
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(faint).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("KEY", "NAME", "ADDRESS", "CONTACT")
	for _, key := range keys {
		r := vm.Records[key]
		tbl.Row(key, FullName(r), Address(r), Contact(r))
	}
	fmt.Fprintln(t.Out, tbl.Render())
	if pages > 1 {
		fmt.Fprintln(t.Out, faint.Render(fmt.Sprintf("page %d/%d, %d entries", page, pages, len(Matching(vm.Records, t.Filter)))))
	}
}

// Patch writes the single changed entry.
func (t *Table) Patch(_ *reconciler.ViewModel, change reconciler.Change) {
	switch change.Op {
	case reconciler.OpAdd, reconciler.OpUpdate:
		r := change.Record
		line := strings.Join(nonEmpty(change.Key, Address(r), Contact(r)), " | ")
		fmt.Fprintln(t.Out, added.Render(fmt.Sprintf("%s %s", change.Op, line)))
	case reconciler.OpDelete:
		fmt.Fprintln(t.Out, gone.Render(fmt.Sprintf("%s %s", change.Op, change.Key)))
	}
}

// page clamps t.Page to the available pages.
func (t *Table) page(n int) (page, pages int) {
	if t.PageSize <= 0 {
		return 1, 1
	}
	pages = (n + t.PageSize - 1) / t.PageSize
	return max(1, min(t.Page, pages)), pages
}

// Matching returns the sorted keys of the records matching filter.
func Matching(records addressbook.RecordSet, filter string) []string {
	filter = strings.ToLower(strings.TrimSpace(filter))
	keys := records.Keys()
	if filter == "" {
		return keys
	}
	matching := keys[:0]
	for _, key := range keys {
		if matches(key, records[key], filter) {
			matching = append(matching, key)
		}
	}
	return matching
}

func matches(key string, r addressbook.Record, filter string) bool {
	if strings.Contains(strings.ToLower(key), filter) {
		return true
	}
	for _, name := range addressbook.Fields {
		if strings.Contains(strings.ToLower(r.Get(name)), filter) {
			return true
		}
	}
	return false
}

func FullName(r addressbook.Record) string {
	return strings.Join(nonEmpty(r.Firstname, r.Name), " ")
}

// Address formats street and number, then postal code and city, on two lines.
func Address(r addressbook.Record) string {
	return strings.Join(nonEmpty(
		strings.Join(nonEmpty(r.Street, r.StreetNr), " "),
		strings.Join(nonEmpty(r.Plz, r.City), " "),
	), "\n")
}

func Contact(r addressbook.Record) string {
	var parts []string
	for _, c := range []struct{ label, value string }{
		{"Tel", r.Phone},
		{"Mobile", r.Mobile},
		{"Email", r.Email},
		{"WhatsApp", r.Whatsapp},
		{"Web", r.Internet},
	} {
		if c.value != "" {
			parts = append(parts, c.label+": "+c.value)
		}
	}
	return strings.Join(parts, " · ")
}

func nonEmpty(elems ...string) []string {
	out := elems[:0]
	for _, e := range elems {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
