package keyring_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effective-security/xpgp/keyring"
	"github.com/effective-security/xpgp/testpgp"
)

func armored(t *testing.T, e *testpgp.Entity) []byte {
	t.Helper()
	data, err := e.Certificate.ArmoredBytes(nil)
	require.NoError(t, err)
	return data
}

func TestCertificatesSingle(t *testing.T) {
	e := testpgp.NewEntity(testpgp.EncryptionSubkey())

	certs, err := keyring.Certificates(armored(t, e))
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, e.Certificate.Fingerprint(), certs[0].Fingerprint())
	require.NoError(t, certs[0].Verify())
}

func TestCertificatesConcatenated(t *testing.T) {
	e1 := testpgp.NewEntity(testpgp.UserID("First <first@example.com>"))
	e2 := testpgp.NewEntity(
		testpgp.UserID("Second <second@example.com>"),
		testpgp.SigningSubkey(),
	)

	data := append(armored(t, e1), armored(t, e2)...)
	certs, err := keyring.Certificates(data)
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, e1.Certificate.KeyID(), certs[0].KeyID())
	assert.Equal(t, e2.Certificate.KeyID(), certs[1].KeyID())
}

func TestCertificatesSkipsForeignBlocks(t *testing.T) {
	e := testpgp.NewEntity()

	sig := []byte("-----BEGIN PGP SIGNATURE-----\n\nwsE=\n-----END PGP SIGNATURE-----\n")
	data := append(sig, armored(t, e)...)

	certs, err := keyring.Certificates(data)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, e.Certificate.KeyID(), certs[0].KeyID())
}

func TestCertificatesEmpty(t *testing.T) {
	certs, err := keyring.Certificates([]byte("no keys here"))
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestCertificatesFromFiles(t *testing.T) {
	dir := t.TempDir()

	e1 := testpgp.NewEntity(testpgp.UserID("One <one@example.com>"))
	e2 := testpgp.NewEntity(testpgp.UserID("Two <two@example.com>"))

	p1 := filepath.Join(dir, "one.pgp")
	p2 := filepath.Join(dir, "two.pgp")
	require.NoError(t, os.WriteFile(p1, armored(t, e1), 0644))
	require.NoError(t, os.WriteFile(p2, armored(t, e2), 0644))

	certs, err := keyring.CertificatesFromFiles([]string{p1, p2})
	require.NoError(t, err)
	require.Len(t, certs, 2)

	_, err = keyring.CertificatesFromFile(filepath.Join(dir, "missing.pgp"))
	assert.Error(t, err)
}
