package contract

// FieldCount is the fixed width of a canonical contact record.
const FieldCount = 7

// Field indexes of a Contact (and of a padded Row).
const (
	FieldLastName = iota
	FieldFirstName
	FieldMiddleName
	FieldOrganization
	FieldPosition
	FieldPhone
	FieldEmail
)

// Row: raw input row, text fields of arbitrary length.
type Row []string

// Contact: canonical 7-field record
// [lastname, firstname, middlename, organization, position, phone, email].
// All fields are always present; unknown values are "".
type Contact [FieldCount]string

// Key returns the merge key of the contact.
func (c Contact) Key() Key {
	return Key{LastName: c[FieldLastName], FirstName: c[FieldFirstName]}
}

// Fields returns the contact as a row, ready for encoding.
func (c Contact) Fields() Row {
	out := make(Row, FieldCount)
	copy(out, c[:])
	return out
}

// Key: merge key (lastname, firstname). Case and whitespace sensitive as extracted.
type Key struct {
	LastName  string
	FirstName string
}

// LineEnding: record terminator style of a CSV document.
type LineEnding string

const (
	LineEndingAuto LineEnding = "auto"
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
)

// Sheet: decoded input table plus the line ending observed in it.
type Sheet struct {
	Rows       []Row
	LineEnding LineEnding
}

// PadRow pads r on the right with "" or truncates it to exactly FieldCount fields.
// The input is never modified.
func PadRow(r Row) Row {
	out := make(Row, FieldCount)
	copy(out, r)
	return out
}
