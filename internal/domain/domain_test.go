package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateColor(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Color
		known    bool
	}{
		{raw: "open", expected: ColorOpen, known: true},
		{raw: "OPEN", expected: ColorOpen, known: true},
		{raw: "closed", expected: ColorClosed, known: true},
		{raw: "CLOSED", expected: ColorClosed, known: true},
		{raw: "merged", expected: ColorFallback, known: false},
		{raw: "", expected: ColorFallback, known: false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			col, known := ParseState(tc.raw).Color()
			assert.Equal(t, tc.expected, col)
			assert.Equal(t, tc.known, known)
		})
	}
}

func TestCommitShortHash(t *testing.T) {
	c := Commit{Hash: "0123456789abcdef0123456789abcdef01234567"}
	assert.Equal(t, "0123456", c.ShortHash())

	short := Commit{Hash: "abc"}
	assert.Equal(t, "abc", short.ShortHash())
}

func TestAuthorColor(t *testing.T) {
	a := AuthorColor("alice")
	b := AuthorColor("bob")

	assert.Equal(t, a, AuthorColor("alice"), "colors must be stable per author")
	assert.NotEqual(t, a, b)
	assert.EqualValues(t, 255, a[3], "author colors are always opaque")
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, a[i], uint8(0x40))
	}
}
