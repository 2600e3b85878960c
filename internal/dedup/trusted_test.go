package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTrustedID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		trusted bool
	}{
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"random text", "my-book-id", false},

		{"designer id", "fbd-1a2b3c-4d5e", true},
		{"designer id uppercase", "FBD-AB12-34CD-EF56", true},
		{"designer prefix alone", "fbd-", false},

		{"numeric above floor", "100001", true},
		{"numeric at floor", "100000", false},
		{"numeric small", "42", false},
		{"numeric overflow", "99999999999999999999999999", false},

		{"real guid", "5f0b3f9a-3c2e-4a47-9d6b-7e8c22c41b9d", true},
		{"guid with braces", "{5f0b3f9a-3c2e-4a47-9d6b-7e8c22c41b9d}", true},
		{"all zeros guid", "00000000-0000-0000-0000-000000000000", false},
		{"all ones guid", "11111111-1111-1111-1111-111111111111", false},
		{"all f guid", "ffffffff-ffff-ffff-ffff-ffffffffffff", false},
		{"sequential digits guid", "12345678-9012-3456-7890-123456789012", false},
		{"weekday leak", "5f0b3f9a-3c2e-4a47-9d6b-7e8cmon41b9d", false},
		{"month leak", "dec0aaaa-3c2e-4a47-9d6b-7e8c22c41b9d", false},
		{"not a guid", "not-a-guid-at-all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.trusted, IsTrustedID(tt.id))
		})
	}
}
