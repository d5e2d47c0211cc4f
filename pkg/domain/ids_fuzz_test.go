package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseCompanyUUID checks that parsing never panics and that accepted
// values are stable under re-parsing.
func FuzzParseCompanyUUID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE companies;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseCompanyUUID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseCompanyUUID(id.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed ID value")
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
		if len(id) != canonicalUUIDLength {
			t.Errorf("unexpected length %d", len(id))
		}
	})
}
