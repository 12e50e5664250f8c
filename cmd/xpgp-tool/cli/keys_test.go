package cli

import (
	"os"
	"path/filepath"

	"github.com/effective-security/xpgp/testpgp"
)

func (s *testSuite) TestKeyInfo() {
	path := s.writeKey("info.pgp", testpgp.NewEntity(
		testpgp.UserID("Info User <info@example.com>"),
		testpgp.EncryptionSubkey(),
	))

	cmd := KeyInfoCmd{In: path}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.HasText("Identity: Info User <info@example.com>", "Subkey: ")
}

func (s *testSuite) TestKeyInfoNoKeys() {
	path := filepath.Join(s.tmpdir, "nokeys.txt")
	s.Require().NoError(os.WriteFile(path, []byte("not a key"), 0644))

	cmd := KeyInfoCmd{In: path}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Equal("no transferable public keys found", err.Error())
}

func (s *testSuite) TestKeyVerify() {
	e := testpgp.NewEntity(testpgp.SigningSubkey())
	path := s.writeKey("verify.pgp", e)

	cmd := KeyVerifyCmd{In: path}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.HasText("OK: " + e.Certificate.KeyIDString())
}

func (s *testSuite) TestKeyVerifyFails() {
	e := testpgp.NewEntity(testpgp.SigningSubkeyWithoutBacksig())
	path := s.writeKey("badverify.pgp", e)

	cmd := KeyVerifyCmd{In: path}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.HasText("FAILED: " + e.Certificate.KeyIDString())
}

func (s *testSuite) TestKeyExport() {
	e := testpgp.NewEntity(testpgp.EncryptionSubkey())
	path := s.writeKey("export.pgp", e)

	headers := filepath.Join(s.tmpdir, "headers.yaml")
	s.Require().NoError(os.WriteFile(headers, []byte("Comment: exported\n"), 0644))

	out := filepath.Join(s.tmpdir, "export.out.pgp")
	cmd := KeyExportCmd{
		In:         path,
		Out:        out,
		Headers:    headers,
		NoChecksum: true,
	}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)
	s.HasTextInFile(out, "-----BEGIN PGP PUBLIC KEY BLOCK-----", "Comment: exported")
}

func (s *testSuite) TestKeyDearmor() {
	e := testpgp.NewEntity()
	path := s.writeKey("dearmor.pgp", e)

	out := filepath.Join(s.tmpdir, "dearmor.bin")
	cmd := KeyDearmorCmd{In: path, Out: out}
	err := cmd.Run(s.ctl)
	s.Require().NoError(err)

	data, err := os.ReadFile(out)
	s.Require().NoError(err)

	n, err := e.Certificate.EncodedLength()
	s.Require().NoError(err)
	s.Equal(n, len(data))
}

func (s *testSuite) TestKeyDearmorWrongType() {
	path := filepath.Join(s.tmpdir, "sig.asc")
	sig := "-----BEGIN PGP SIGNATURE-----\n\nwsE=\n-----END PGP SIGNATURE-----\n"
	s.Require().NoError(os.WriteFile(path, []byte(sig), 0644))

	cmd := KeyDearmorCmd{In: path}
	err := cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Contains(err.Error(), "unexpected armor block type")
}
