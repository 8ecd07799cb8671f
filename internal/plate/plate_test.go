package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already canonical", in: "MH 01 AB 1234", want: "MH 01 AB 1234"},
		{name: "noise characters", in: "mh-01*ab#1234!!", want: "MH 01 AB 1234"},
		{name: "no separators", in: "MH01AB1234", want: "MH 01 AB 1234"},
		{name: "multiline ocr text", in: "IND\nMH 12 DE 1433", want: "MH 12 DE 1433"},
		{name: "single series letter", in: "DL 7 C 1111", want: "DL 7 C 1111"},
		{name: "three series letters", in: "KA05MNB9999", want: "KA 05 MNB 9999"},
		{name: "fallback no grouping", in: "ABCDEFGH", want: "ABCDEFGH"},
		{name: "fallback digits only", in: "1234567", want: "1234567"},
		{name: "empty", in: "", want: ""},
		{name: "surrounding noise kept out", in: "  ##  mh 01 ab 1234  ##  ", want: "MH 01 AB 1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"MH 01 AB 1234", "KA 05 MNB 9999", "ABCDEFGH"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mh-01*ab#1234!!", "MH01AB1234"},
		{"  a   b\tc\n", "A B C"},
		{"plate: MH.01.AB.1234", "PLATE MH01AB1234"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in))
	}
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "MH01AB1234", Compact("mh 01-ab 1234"))
	assert.Equal(t, "MH01AB1234", Compact("MH 01 AB 1234"))
	assert.Equal(t, "", Compact("   "))
}
