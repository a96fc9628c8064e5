package registry

import (
	"bytes"
	"encoding/json"

	"phonebook/pkg/contract"
	acsv "phonebook/plugins/assembler/csv"
	npos "phonebook/plugins/normalizer/positional"
	ruph "phonebook/plugins/phone/ruphone"
	rfs "phonebook/plugins/reader/filesystem"
	scsv "phonebook/plugins/splitter/csv"
	wfs "phonebook/plugins/writer/filesystem"
)

// strictUnmarshal decodes raw into v and rejects unknown fields. Empty raw keeps v's zero value.
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Phone is what the normalizer needs from the phone component, plus the diagnostics check.
type Phone interface {
	contract.PhoneFormatter
	contract.PhoneChecker
}

// NewReader builds a Reader from raw JSON options.
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewSplitter builds a Splitter from raw JSON options.
type NewSplitter func(raw json.RawMessage) (contract.Splitter, error)

// NewPhone builds a phone formatter/checker from raw JSON options.
type NewPhone func(raw json.RawMessage) (Phone, error)

// NewNormalizer builds a Normalizer from raw JSON options and the phone formatter it delegates to.
type NewNormalizer func(raw json.RawMessage, phone contract.PhoneFormatter) (contract.Normalizer, error)

// NewAssembler builds an Assembler from raw JSON options.
type NewAssembler func(raw json.RawMessage) (contract.Assembler, error)

// NewWriter builds a Writer from raw JSON options.
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader factories, by name.
var Reader = map[string]NewReader{
	// fs: local file, buffered
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Splitter factories.
var Splitter = map[string]NewSplitter{
	"csv": func(raw json.RawMessage) (contract.Splitter, error) {
		var opts scsv.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return scsv.New(&opts)
	},
}

// Phone factories.
var PhoneFormatter = map[string]NewPhone{
	// ru: +7(AAA)BBB-CC-DD[ доб.EXT]
	"ru": func(raw json.RawMessage) (Phone, error) {
		var opts ruph.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ruph.New(&opts), nil
	},
}

// Normalizer factories.
var Normalizer = map[string]NewNormalizer{
	// positional: name blob in columns 0..2, phone in column 5
	"positional": func(raw json.RawMessage, phone contract.PhoneFormatter) (contract.Normalizer, error) {
		var opts npos.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return npos.New(&opts, phone), nil
	},
}

// Assembler factories.
var Assembler = map[string]NewAssembler{
	"csv": func(raw json.RawMessage) (contract.Assembler, error) {
		var opts acsv.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return acsv.New(&opts)
	},
}

// Writer factories.
var Writer = map[string]NewWriter{
	// fs: local file, atomic replace by default
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}
