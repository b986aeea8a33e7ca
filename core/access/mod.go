// Package access defines the abstraction of an identity that submits
// transactions to the ledger.
package access

import (
	"encoding"
	"strings"
)

// Identity is an abstraction to uniquely identify a signer. The text form is
// the canonical representation used as an account name by the ledger.
type Identity interface {
	encoding.TextMarshaler

	Equal(other interface{}) bool
}

// Compile returns a compacted rule from the string segments.
func Compile(segments ...string) string {
	return strings.Join(segments, ":")
}

// Text returns the text representation of the identity, or an empty string
// when it cannot be marshaled.
func Text(ident Identity) string {
	if ident == nil {
		return ""
	}

	data, err := ident.MarshalText()
	if err != nil {
		return ""
	}

	return string(data)
}
