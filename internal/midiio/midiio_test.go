package midiio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchNameExact(t *testing.T) {
	candidates := []string{"IAC Driver Bus 1", "Scarlett 2i2 USB"}
	found, ok := matchName(candidates, "IAC Driver Bus 1")
	assert.True(t, ok)
	assert.Equal(t, "IAC Driver Bus 1", found)
}

func TestMatchNameTruncatesToThreeWords(t *testing.T) {
	candidates := []string{"IAC Driver Bus 1"}
	found, ok := matchName(candidates, "IAC Driver Bus 1 Port")
	assert.True(t, ok)
	assert.Equal(t, "IAC Driver Bus 1", found)
}

func TestMatchNamePrefixFallback(t *testing.T) {
	candidates := []string{"Scarlett 2i2 USB"}
	found, ok := matchName(candidates, "Scarlett")
	assert.True(t, ok)
	assert.Equal(t, "Scarlett 2i2 USB", found)
}

func TestMatchNameSubstringFallback(t *testing.T) {
	candidates := []string{"Built-in Scarlett Output"}
	found, ok := matchName(candidates, "Scarlett")
	assert.True(t, ok)
	assert.Equal(t, "Built-in Scarlett Output", found)
}

func TestMatchNameNoneFound(t *testing.T) {
	_, ok := matchName([]string{"Some Other Device"}, "Nonexistent")
	assert.False(t, ok)
}
