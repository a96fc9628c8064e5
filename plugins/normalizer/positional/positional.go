package positional

import (
	"strings"

	"phonebook/pkg/contract"
)

// Options are the positional normalizer settings. There are none yet; the type exists so the
// registry can decode `options.normalizer` strictly.
type Options struct{}

// Normalizer maps a raw row to a Contact by column position.
type Normalizer struct {
	phone contract.PhoneFormatter
}

// New creates a Normalizer. A nil formatter leaves the phone field as read.
func New(_ *Options, phone contract.PhoneFormatter) *Normalizer {
	return &Normalizer{phone: phone}
}

var _ contract.Normalizer = (*Normalizer)(nil)

// Normalize pads the row to seven fields, re-splits the name blob held in the first three
// columns and formats the phone column.
//
// The name columns are joined with spaces and split on whitespace, so a full name typed into
// the lastname column fills all three name fields, and a two-word last name shifts the rest.
// Tokens past the third are dropped.
func (n *Normalizer) Normalize(r contract.Row) (contract.Key, contract.Contact) {
	row := contract.PadRow(r)

	var c contract.Contact
	blob := strings.Join(row[contract.FieldLastName:contract.FieldMiddleName+1], " ")
	names := strings.Fields(blob)
	for i := 0; i < len(names) && i <= contract.FieldMiddleName; i++ {
		c[i] = names[i]
	}

	c[contract.FieldOrganization] = row[contract.FieldOrganization]
	c[contract.FieldPosition] = row[contract.FieldPosition]
	c[contract.FieldEmail] = row[contract.FieldEmail]

	phone := row[contract.FieldPhone]
	if n.phone != nil {
		phone = n.phone.Format(phone)
	}
	c[contract.FieldPhone] = phone

	return c.Key(), c
}
