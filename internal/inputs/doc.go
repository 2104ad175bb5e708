// Package inputs resolves ${input:<id>} placeholders in tool-server
// configuration against a value store.
//
// Secrecy is carried as a type-level tag: values for inputs declared with
// password=true travel through resolution as Secret, whose formatting and
// JSON encoding always redact. The plain value is only extractable via
// Reveal, at the point where it crosses into a subprocess environment or
// an HTTP client.
//
// A declared input with no available value is fatal for that one server
// (UnresolvedInputError); the registry marks the server stopped-error and
// continues with the rest.
package inputs
