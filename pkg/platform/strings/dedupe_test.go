package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "duplicates removed order preserved", input: []string{"patients:read", "finance:read", "patients:read"}, want: []string{"patients:read", "finance:read"}},
		{name: "whitespace trimmed", input: []string{"  patients:read ", "patients:read"}, want: []string{"patients:read"}},
		{name: "empties dropped", input: []string{"", "  ", "data:export"}, want: []string{"data:export"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DedupeAndTrim(tc.input))
		})
	}
}
