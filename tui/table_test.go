package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/reconciler"
)

func records() addressbook.RecordSet {
	return addressbook.RecordSet{
		"Jonas Mahlburg": {Firstname: "Jonas", Name: "Mahlburg", Street: "Meudonstr", StreetNr: "14", Plz: "29221", City: "Celle"},
		"HM Software":    {Firstname: "HM", Name: "Software", Street: "Rampenweg", StreetNr: "1b", City: "Adelheidsdorf", Internet: "hm.example"},
		"Anna Muster":    {Firstname: "Anna", Name: "Muster", City: "Wien", Phone: "123", Email: "anna@example.org"},
	}
}

func TestRenderEmpty(t *testing.T) {
	for _, vm := range []*reconciler.ViewModel{
		{},
		{Records: addressbook.RecordSet{}},
		{Records: records()},
	} {
		var out bytes.Buffer
		tbl := &Table{Out: &out}
		if vm.Records != nil && len(vm.Records) > 0 {
			tbl.Filter = "nothing matches this"
		}
		tbl.Render(vm)
		if !strings.Contains(out.String(), NoEntries) {
			t.Errorf("Render() = %q, want %q", out.String(), NoEntries)
		}
	}
}

func TestRenderSortedAndPaged(t *testing.T) {
	var out bytes.Buffer
	tbl := &Table{Out: &out, PageSize: 2, Page: 9}
	tbl.Render(&reconciler.ViewModel{Records: records()})

	s := out.String()
	if !strings.Contains(s, "Jonas Mahlburg") || strings.Contains(s, "Anna Muster") {
		t.Errorf("last page = %q, want only Jonas Mahlburg", s)
	}
	if !strings.Contains(s, "page 2/2, 3 entries") {
		t.Errorf("Render() = %q, want a page footer", s)
	}
}

func TestMatching(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"Anna Muster", "HM Software", "Jonas Mahlburg"}},
		{"  celle ", []string{"Jonas Mahlburg"}},
		{"EXAMPLE", []string{"Anna Muster", "HM Software"}},
		{"software", []string{"HM Software"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Matching(records(), tt.filter)); diff != "" {
				t.Errorf("Matching() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	r := records()["Anna Muster"]
	if got := Address(r); got != "Wien" {
		t.Errorf("Address() = %q", got)
	}
	if got := Contact(r); got != "Tel: 123 · Email: anna@example.org" {
		t.Errorf("Contact() = %q", got)
	}
	if got := Address(records()["Jonas Mahlburg"]); got != "Meudonstr 14\n29221 Celle" {
		t.Errorf("Address() = %q", got)
	}
}

func TestPatch(t *testing.T) {
	var out bytes.Buffer
	tbl := &Table{Out: &out}
	tbl.Patch(nil, reconciler.Change{Op: reconciler.OpAdd, Key: "Anna Muster", Record: records()["Anna Muster"]})
	tbl.Patch(nil, reconciler.Change{Op: reconciler.OpDelete, Key: "HM Software"})

	s := out.String()
	if !strings.Contains(s, "add Anna Muster") || !strings.Contains(s, "delete HM Software") {
		t.Errorf("Patch() output = %q", s)
	}
}

func TestNotifier(t *testing.T) {
	var out bytes.Buffer
	n := &Notifier{Out: &out}
	n.Status(reconciler.StatusLoading)
	if out.Len() != 0 {
		t.Errorf("quiet Status() wrote %q", out.String())
	}
	n.Alert("load failed", errors.New("connection refused"))
	if !strings.Contains(out.String(), "error: load failed: connection refused") {
		t.Errorf("Alert() wrote %q", out.String())
	}

	out.Reset()
	n.Alert("", errors.New("unknown flag: --x"))
	if !strings.Contains(out.String(), "error: unknown flag: --x") {
		t.Errorf("Alert() without message wrote %q", out.String())
	}
}

func TestAutoConfirm(t *testing.T) {
	for _, want := range []bool{true, false} {
		got, err := AutoConfirm(want).Confirm(context.Background(), "Delete?")
		if got != want || err != nil {
			t.Errorf("AutoConfirm(%v).Confirm() = %v, %v", want, got, err)
		}
	}
}
