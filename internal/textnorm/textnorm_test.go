package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "accordeon", Fold("Accordéon"))
	assert.Equal(t, "icone a la une", Fold("Icône à la UNE"))
	assert.Equal(t, "", Fold(""))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"accordeon", "bouton", "like"}, Tokens("Accordéon bouton-like"))
	assert.Empty(t, Tokens("  --  "))
}
