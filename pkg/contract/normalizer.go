package contract

// Normalizer turns one raw row into its merge key and canonical contact.
// No error conditions: any row, including an empty one, yields a well-formed Contact.
type Normalizer interface {
	Normalize(r Row) (Key, Contact)
}
