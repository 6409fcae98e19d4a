package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"abcdefg@x.com": "abc****fg@x.com",
		"abcdef@x.com":  "abc****ef@x.com",
		"abcde@x.com":   "abcde@x.com",
		"a@x.com":       "a@x.com",
		"no-at-sign":    "no-at-sign",
	}
	for in, want := range cases {
		assert.Equal(t, want, Email(in), in)
	}
}
