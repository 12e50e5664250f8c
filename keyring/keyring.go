package keyring

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/effective-security/xpgp/armor"
	"github.com/effective-security/xpgp/metricskey"
	"github.com/effective-security/xpgp/tpk"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xpgp", "keyring")

// Certificates reads every transferable public key from the given armored
// data, which may concatenate multiple armor blocks. Blocks whose type
// cannot carry a public key are skipped.
func Certificates(data []byte) ([]*tpk.Certificate, error) {
	defer metricskey.PerfKeyringOperation.MeasureSince(time.Now(), "parse")

	var keyring []*tpk.Certificate

	for {
		block, rest := armor.Decode(data)
		if block == nil {
			logger.KV(xlog.TRACE, "reason", "no_block", "len", len(data))
			break
		}

		if tpk.MatchesBlockType(block.Type) {
			parser := tpk.NewParser(bytes.NewReader(block.Bytes))
			for {
				cert, _, err := parser.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, errors.WithStack(err)
				}
				keyring = append(keyring, cert)
			}
		}
		if len(rest) == 0 {
			break
		}
		data = rest
	}

	return keyring, nil
}

// CertificatesFromFile reads transferable public keys from the given file
// path.
func CertificatesFromFile(path string) ([]*tpk.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	k, err := Certificates(data)
	if err != nil {
		return nil, err
	}

	return k, nil
}

// CertificatesFromFiles reads transferable public keys from the given file
// paths.
//
// This function might typically be used to read all trusted signer keys
// from a key directory.
func CertificatesFromFiles(files []string) ([]*tpk.Certificate, error) {
	var keyring []*tpk.Certificate
	for _, path := range files {
		// read certificates in file
		el, err := CertificatesFromFile(path)
		if err != nil {
			return nil, err
		}

		// append keyring
		keyring = append(keyring, el...)
	}

	return keyring, nil
}
