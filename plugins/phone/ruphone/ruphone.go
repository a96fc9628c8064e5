package ruphone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"phonebook/pkg/contract"
)

// Options are the optional ruphone settings.
type Options struct {
	// Validate enables libphonenumber checks of formatted values (Valid). Default true.
	Validate *bool `json:"validate,omitempty"`
	// Region used by Valid. Default "RU".
	Region string `json:"region"`
}

// unicodeClasses widens \s and \d to Unicode whitespace and decimal digits, so a no-break
// space separates groups like a plain one.
var unicodeClasses = strings.NewReplacer(`\s`, `\s\x{0b}\x{1c}-\x{1f}\x{85}\p{Z}`, `\d`, `\p{Nd}`)

// Groups: country code, AAA, BBB, CC, DD, extension marker, extension digits.
var phoneRe = regexp.MustCompile(unicodeClasses.Replace(
	`[\s\-\(]*(\+?7|8)?[\s\-\(]*(\d{3})[\s\-\)]*(\d{3})` +
		`[\s\-\)]*(\d{2})[\s\-\)]*(\d{2})[\s\-\(]*(доб\.?)?` +
		`[\.\s\-]?[\s]*(\d+)?[\s\)]*`))

const (
	canonicalTemplate = "+7(${2})${3}-${4}-${5}"
	extensionTemplate = " доб.${7}"
	extensionMarker   = "доб."
)

// Formatter rewrites Russian phone numbers to +7(AAA)BBB-CC-DD[ доб.EXT].
type Formatter struct {
	validate bool
	region   string
}

// New creates a Formatter.
func New(opts *Options) *Formatter {
	f := &Formatter{validate: true, region: "RU"}
	if opts == nil {
		return f
	}
	if opts.Validate != nil {
		f.validate = *opts.Validate
	}
	if r := strings.ToUpper(strings.TrimSpace(opts.Region)); r != "" {
		f.region = r
	}
	return f
}

var (
	_ contract.PhoneFormatter = (*Formatter)(nil)
	_ contract.PhoneChecker   = (*Formatter)(nil)
)

// Format replaces every match of the phone pattern with the canonical template and trims.
// The extension suffix is emitted only when the literal "доб." occurs in raw; then the
// captured digits follow it, possibly empty. Input without a 3+3+2+2 digit grouping comes
// back unchanged apart from trimming.
func (f *Formatter) Format(raw string) string {
	tmpl := canonicalTemplate
	if strings.Contains(raw, extensionMarker) {
		tmpl += extensionTemplate
	}
	return strings.TrimSpace(phoneRe.ReplaceAllString(raw, tmpl))
}

// Valid reports whether formatted parses as a valid number for the configured region.
// Empty values and disabled validation count as valid. The " доб.NNN" suffix is
// understood by libphonenumber as an extension.
func (f *Formatter) Valid(formatted string) bool {
	if !f.validate {
		return true
	}
	s := strings.TrimSpace(formatted)
	if s == "" {
		return true
	}
	s = strings.Replace(s, extensionMarker, " ext. ", 1)
	num, err := phonenumbers.Parse(s, f.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
