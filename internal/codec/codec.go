// Package codec implements the reversible transform used to obscure
// stored passwords. It XORs the UTF-8 bytes of the input with a fixed
// cyclic key and base64-encodes the result so it can live in a plain
// text document field.
//
// This is obfuscation, not encryption: the key is a constant embedded
// in the binary. Anyone with the binary can decode stored secrets.
// That is a documented property of the system, not a bug.
package codec

import (
	"encoding/base64"
	"unicode/utf8"
)

// xorKey is the fixed cyclic key. Static by design; see package doc.
const xorKey = "CTPJESUSATEULALALA"

// Encode obscures s and returns a transport-safe text representation.
// Encoding the empty string yields the empty string.
func Encode(s string) string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ xorKey[i%len(xorKey)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

// Decode reverses Encode. The second return value is false when the
// input is not valid output of Encode (bad base64, or the XOR result
// is not valid UTF-8); callers must treat that as "secret
// unrecoverable" and substitute their own fallback. Decode never
// panics.
func Decode(encoded string) (string, bool) {
	if encoded == "" {
		return "", true
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	out := make([]byte, len(raw))
	for i := range raw {
		out[i] = raw[i] ^ xorKey[i%len(xorKey)]
	}
	if !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}
