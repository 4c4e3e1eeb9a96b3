package infra

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRecortarNombre(t *testing.T) {
	assert.Equal(t, "Milanesa", recortarNombre("Milanesa"))
	assert.Equal(t, "Hamburguesa completa …", recortarNombre("Hamburguesa completa con papas"))

	// Accented names cut on rune boundaries, never mid-character.
	corto := recortarNombre("Café con leche grande y medialunas")
	assert.True(t, utf8.ValidString(corto))
	assert.Equal(t, 22, len([]rune(corto)))
	assert.Equal(t, "Café con leche grande…", corto)
}
