package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantChanged bool
	}{
		{name: "plain ascii", input: "1. Maize", want: "1. Maize"},
		{name: "swahili with accents", input: "Mahindi – msimu wa mvua", want: "Mahindi – msimu wa mvua"},
		{name: "nul byte", input: "Bea\x00ns", want: "Beans", wantChanged: true},
		{name: "invalid utf8", input: "Sorg\xffhum", want: "Sorghum", wantChanged: true},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := CleanText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestCleanTextPtr(t *testing.T) {
	assert.Nil(t, CleanTextPtr(nil))

	input := "Kale\x00"
	got := CleanTextPtr(&input)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Kale", *got)
	}
}
