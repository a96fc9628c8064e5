package contract

// PhoneFormatter maps a raw phone field to its canonical display form.
// Best-effort and total: it never fails, unrecognized input degrades to a partial or unchanged string.
type PhoneFormatter interface {
	Format(raw string) string
}

// PhoneChecker is optionally implemented by a PhoneFormatter to judge a formatted value.
// Diagnostic only; it never changes what is written.
type PhoneChecker interface {
	Valid(formatted string) bool
}
