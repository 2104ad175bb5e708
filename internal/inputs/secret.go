package inputs

// Secret wraps an input value so it cannot be accidentally logged or
// serialized. The underlying value is only reachable through Reveal,
// which callers use at the process/environment boundary.
type Secret struct {
	value    string
	redacted bool
}

const redactedPlaceholder = "***"

// NewSecret wraps a value that must be redacted in diagnostics.
func NewSecret(value string) Secret {
	return Secret{value: value, redacted: true}
}

// NewPlainValue wraps a non-secret value. It shares the Secret carrier so
// the resolver handles both uniformly, but formatting does not redact it.
func NewPlainValue(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the underlying value. Call only where the value crosses
// the process or environment boundary.
func (s Secret) Reveal() string {
	return s.value
}

// IsRedacted reports whether the value is treated as secret.
func (s Secret) IsRedacted() bool {
	return s.redacted
}

// String implements fmt.Stringer. Secret values format as "***".
func (s Secret) String() string {
	if s.redacted {
		return redactedPlaceholder
	}
	return s.value
}

// GoString keeps %#v output redacted as well.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalJSON keeps secrets out of JSON-encoded diagnostics.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
