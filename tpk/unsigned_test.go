package tpk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effective-security/xpgp/testpgp"
)

func TestAsUnsigned(t *testing.T) {
	e := testpgp.NewEntity(
		testpgp.EncryptionSubkey(),
		testpgp.SigningSubkey(),
	)

	u := e.Certificate.AsUnsigned()
	require.NotNil(t, u)
	assert.Equal(t, e.Primary, u.PrimaryKey)

	require.Len(t, u.UserIDs, 1)
	assert.Equal(t, "Test User <test@example.com>", u.UserIDs[0].Id)

	require.Len(t, u.Subkeys, 2)

	enc := u.Subkeys[0]
	assert.True(t, enc.Flags.Valid)
	assert.True(t, enc.Flags.EncryptCommunications)
	assert.True(t, enc.Flags.EncryptStorage)
	assert.False(t, enc.Flags.Sign)
	assert.Nil(t, enc.Embedded)

	sign := u.Subkeys[1]
	assert.True(t, sign.Flags.Valid)
	assert.True(t, sign.Flags.Sign)
	assert.False(t, sign.Flags.EncryptCommunications)
	require.NotNil(t, sign.Embedded)
}

func TestAsUnsignedFirstSignatureWins(t *testing.T) {
	// a revoked subkey carries (binding, revocation); the projection is
	// derived from the first signature only
	e := testpgp.NewEntity(testpgp.RevokedSubkey())
	require.Len(t, e.Certificate.Subkeys[0].Signatures, 2)

	u := e.Certificate.AsUnsigned()
	require.Len(t, u.Subkeys, 1)
	sk := u.Subkeys[0]
	// flags come from the binding, not the revocation
	assert.True(t, sk.Flags.Valid)
	assert.True(t, sk.Flags.EncryptCommunications)
}

func TestAsUnsignedIndependentlyOwned(t *testing.T) {
	e := testpgp.NewEntity(
		testpgp.EncryptionSubkey(),
		testpgp.SigningSubkey(),
	)

	u := e.Certificate.AsUnsigned()
	u.Subkeys = u.Subkeys[:1]
	u.UserIDs = nil

	// computed fresh on each request
	again := e.Certificate.AsUnsigned()
	assert.Len(t, again.Subkeys, 2)
	assert.Len(t, again.UserIDs, 1)
}

func TestAsUnsignedNoSubkeys(t *testing.T) {
	e := testpgp.NewEntity()
	u := e.Certificate.AsUnsigned()
	assert.Empty(t, u.Subkeys)
	assert.Len(t, u.UserIDs, 1)
}
