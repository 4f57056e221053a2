package codec

import (
	"encoding/base64"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"123456",
		"hunter2",
		"pässwörd",
		"пароль",
		"senha com espaços e açúcar",
		"日本語のパスワード",
		"emoji 🔑🔒",
		"a",
		"exactly the length of the key!!!!!",
	}
	for _, in := range inputs {
		enc := Encode(in)
		got, ok := Decode(enc)
		if !ok {
			t.Errorf("Decode(Encode(%q)) reported failure", in)
			continue
		}
		if got != in {
			t.Errorf("round trip mismatch: got %q, want %q", got, in)
		}
	}
}

func TestEncodeEmptyString(t *testing.T) {
	if enc := Encode(""); enc != "" {
		t.Errorf("Encode(\"\") = %q, want empty string", enc)
	}
	got, ok := Decode("")
	if !ok || got != "" {
		t.Errorf("Decode(\"\") = (%q, %v), want (\"\", true)", got, ok)
	}
}

func TestEncodeOutputDiffersFromInput(t *testing.T) {
	in := "supersecret"
	if Encode(in) == in {
		t.Errorf("Encode(%q) returned the input unchanged", in)
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	cases := []string{
		"not base64 at all!!!",
		"%%%",
		"plaintext",
	}
	for _, c := range cases {
		if got, ok := Decode(c); ok {
			t.Errorf("Decode(%q) = (%q, true), want failure", c, got)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	// Valid base64 whose XOR result is not valid UTF-8.
	enc := base64.StdEncoding.EncodeToString([]byte{0xff ^ 'C', 0xfe ^ 'T'})
	if got, ok := Decode(enc); ok {
		t.Errorf("Decode of invalid UTF-8 payload = (%q, true), want failure", got)
	}
}
