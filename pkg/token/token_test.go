package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PlainBadge(t *testing.T) {
	svc := NewService("test-secret-key", "foxhunt")

	id, err := svc.Resolve("player-42")
	require.NoError(t, err)
	assert.Equal(t, "player-42", id)
}

func TestMintAndResolve_SignedBadge(t *testing.T) {
	svc := NewService("test-secret-key", "foxhunt")

	signed, err := svc.Mint("player-42")
	require.NoError(t, err)

	id, err := svc.Resolve(signed)
	require.NoError(t, err)
	assert.Equal(t, "player-42", id)
}

func TestResolve_RejectsForgedSignature(t *testing.T) {
	minter := NewService("real-secret-key", "foxhunt")
	verifier := NewService("other-secret-key", "foxhunt")

	signed, err := minter.Mint("player-42")
	require.NoError(t, err)

	_, err = verifier.Resolve(signed)
	assert.Error(t, err)
}

func TestResolve_EmptyToken(t *testing.T) {
	svc := NewService("test-secret-key", "foxhunt")

	_, err := svc.Resolve("   ")
	assert.Error(t, err)
}
