package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	counter, err := NewTokenCounter("gpt-4.1-mini")
	require.NoError(t, err)

	assert.Equal(t, 0, counter.CountTokens(""))
	short := counter.CountTokens("Como os juros são calculados?")
	long := counter.CountTokens(strings.Repeat("Como os juros são calculados? ", 20))
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}

func TestValidateTokenLimit(t *testing.T) {
	counter, err := NewTokenCounter("gpt-4.1-mini")
	require.NoError(t, err)

	assert.True(t, counter.ValidateTokenLimit("sim", 5))
	assert.False(t, counter.ValidateTokenLimit(strings.Repeat("palavra ", 50), 5))
}

func TestNilCounterEstimates(t *testing.T) {
	var counter *TokenCounter
	assert.Equal(t, 2, counter.CountTokens("12345678"))
}

func TestCountTokensSimpleMatchesDefault(t *testing.T) {
	text := "Vendemos planos de academia com mensalidade recorrente."
	assert.Equal(t, DefaultCounter().CountTokens(text), CountTokensSimple(text))
}
