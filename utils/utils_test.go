package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomAlphaNumeric(t *testing.T) {
	s, err := GenerateRandomAlphaNumeric(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(charset, r))
	}

	_, err = GenerateRandomAlphaNumeric(0)
	assert.Error(t, err)
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "sess_"))
	assert.Len(t, a, len("sess_")+SessionIDLength)
	assert.NotEqual(t, a, b)
}
