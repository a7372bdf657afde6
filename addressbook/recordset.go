package addressbook

import (
	"maps"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RecordSet maps server keys to records.
type RecordSet map[string]Record

// Keys returns the keys of s in German collation order.
func (s RecordSet) Keys() []string {
	keys := slices.Collect(maps.Keys(s))
	collate.New(language.German, collate.IgnoreCase).SortStrings(keys)
	return keys
}

// Clone returns an independent copy of s. A nil set clones to an empty one.
func (s RecordSet) Clone() RecordSet {
	c := make(RecordSet, len(s))
	maps.Copy(c, s)
	return c
}

// ImportOutcome aggregates the result of a bulk import run.
type ImportOutcome struct {
	Success int
	Errors  int
}
