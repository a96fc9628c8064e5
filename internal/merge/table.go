package merge

import (
	"slices"
	"strings"

	"phonebook/pkg/contract"
)

// mergeable are the non-key fields folded across duplicates.
var mergeable = [...]int{
	contract.FieldMiddleName,
	contract.FieldOrganization,
	contract.FieldPosition,
	contract.FieldPhone,
	contract.FieldEmail,
}

// Table is the insertion-ordered Key -> Contact mapping built from normalized rows.
// Not safe for concurrent use.
type Table struct {
	index  map[contract.Key]int
	order  []contract.Contact
	merged int
}

// NewTable creates an empty Table; sizeHint preallocates.
func NewTable(sizeHint int) *Table {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Table{
		index: make(map[contract.Key]int, sizeHint),
		order: make([]contract.Contact, 0, sizeHint),
	}
}

// Add folds c into the table under key.
// A new key is inserted as-is. For a known key every empty stored field among middlename,
// organization, position, phone and email takes the incoming value when that is non-empty;
// populated fields are never overwritten. Reports whether c folded into an existing entry.
func (t *Table) Add(key contract.Key, c contract.Contact) bool {
	i, ok := t.index[key]
	if !ok {
		t.index[key] = len(t.order)
		t.order = append(t.order, c)
		return false
	}
	cur := &t.order[i]
	for _, f := range mergeable {
		if cur[f] == "" && c[f] != "" {
			cur[f] = c[f]
		}
	}
	t.merged++
	return true
}

// Get returns the stored contact for key.
func (t *Table) Get(key contract.Key) (contract.Contact, bool) {
	i, ok := t.index[key]
	if !ok {
		return contract.Contact{}, false
	}
	return t.order[i], true
}

// Len is the number of distinct keys.
func (t *Table) Len() int { return len(t.order) }

// Merged is the number of Add calls that folded into an existing key.
func (t *Table) Merged() int { return t.merged }

// Sorted returns the contacts ordered by last name, byte-wise ascending.
// The sort is stable over first-seen order, so equal last names keep input order.
// The table itself is not reordered.
func (t *Table) Sorted() []contract.Contact {
	out := slices.Clone(t.order)
	slices.SortStableFunc(out, func(a, b contract.Contact) int {
		return strings.Compare(a[contract.FieldLastName], b[contract.FieldLastName])
	})
	return out
}
