package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeDuplicateKey(t *testing.T) {
	tests := []struct {
		name                    string
		title, author, language string
		want                    string
	}{
		{"plain", "Roadside Picnic", "Arkady Strugatsky", "en",
			"roadside picnic|arkady strugatsky|en"},
		{"case folded", "ROADSIDE Picnic", "ARKADY Strugatsky", "EN",
			"roadside picnic|arkady strugatsky|en"},
		{"whitespace collapsed", "  Roadside \t Picnic ", " Arkady  Strugatsky ", "en",
			"roadside picnic|arkady strugatsky|en"},
		{"empty fields", "", "", "", "||"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeDuplicateKey(tt.title, tt.author, tt.language))
		})
	}
}

func TestComputeDuplicateKey_StampsField(t *testing.T) {
	b := &Book{Title: "Roadside Picnic", Language: "en", Authors: []string{"Arkady Strugatsky", "Boris Strugatsky"}}

	key := b.ComputeDuplicateKey()
	assert.Equal(t, "roadside picnic|arkady strugatsky|en", key)
	assert.Equal(t, key, b.DuplicateKey)
}

func TestPrimaryAuthor(t *testing.T) {
	assert.Equal(t, "", (&Book{}).PrimaryAuthor())
	assert.Equal(t, "A", (&Book{Authors: []string{"A", "B"}}).PrimaryAuthor())
}

func TestIsReplaced(t *testing.T) {
	assert.False(t, (&Book{}).IsReplaced())
	assert.True(t, (&Book{ReplacedByID: "x"}).IsReplaced())
}
