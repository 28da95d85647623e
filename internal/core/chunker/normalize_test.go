package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t ", want: ""},
		{name: "collapses whitespace runs", in: "  Hello,\n\n  world.\tBye  ", want: "Hello, world. Bye"},
		{name: "control characters become spaces", in: "left\x00right\x07end", want: "left right end"},
		{name: "zero width characters are removed", in: "zero\u200bwidth\u200c and\u200d bom\ufeff", want: "zerowidth and bom"},
		{name: "nfkc ligature", in: "\ufb01nal o\ufb03ce", want: "final office"},
		{name: "nfkc fullwidth", in: "\uff21\uff22\uff23\u3000\uff11\uff12\uff13", want: "ABC 123"},
		{name: "non breaking space", in: "a\u00a0\u00a0b", want: "a b"},
		{name: "control next to space does not double spaces", in: "a \x01 b", want: "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"  a  b　c  ",
		"x\x1f\x1fy",
		"¨ diaeresis and Ω ohm",
		"mixed \ufb01\u200b\x00 \t\n stuff. Next sentence!",
		"\ufeff\ufeff",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
