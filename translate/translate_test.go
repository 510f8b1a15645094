// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("slot 3: bad", From("slot %d: %v", 3, "bad"))
	assert.Equal("0x0000002a", From("0x%08x", uint32(42)))
}

func TestLocales(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(LANG_ENV, "fr-FR")
	assert.Equal([]string{"fr-FR"}, Locales())

	t.Setenv(LANG_ENV, "")
	assert.NotEmpty(Locales())
}
