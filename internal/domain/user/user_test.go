package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@mail-host.example.org", "UPPER@CASE.IO"}
	invalid := []string{"", "plain", "@b.co", "a@b", "a b@c.de", "a@b_c.de"}

	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}

func TestLanguageOrDefault(t *testing.T) {
	assert.Equal(t, "English", LanguageOrDefault(""))
	assert.Equal(t, "English", LanguageOrDefault("  "))
	assert.Equal(t, "French", LanguageOrDefault("French"))
}

func TestNameFromEmail(t *testing.T) {
	assert.Equal(t, "jane.doe", NameFromEmail("jane.doe@example.com"))
	assert.Equal(t, "nobody", NameFromEmail("nobody"))
}
