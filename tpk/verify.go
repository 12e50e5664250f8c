package tpk

import (
	"hash"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/effective-security/xpgp/metricskey"
)

// Verify checks the whole certificate: the details bundle self-signatures
// first, then every subkey binding. The first failing check aborts the
// call; there is no best-signature fallback, so one forged or broken
// signature in a subkey's list fails the entire certificate.
func (c *Certificate) Verify() error {
	defer metricskey.PerfOperation.MeasureSince(time.Now(), "verify")

	if err := c.Details.Verify(c.PrimaryKey); err != nil {
		return err
	}
	for i := range c.Subkeys {
		if err := c.Subkeys[i].Verify(c.PrimaryKey); err != nil {
			return err
		}
	}
	return nil
}

// Verify checks every binding signature of the subkey against the primary
// key. A subkey with no signatures fails with ErrMissingBindings; assembly
// never produces one, but callers constructing certificates directly can.
//
// Every signature in the list must pass, not only the most recent one. A
// forward binding whose key flags mark the subkey signing capable must
// carry an embedded signature made by the subkey over the primary key,
// proving the subkey holder consents to sign on the primary's behalf.
func (s *Subkey) Verify(primary *packet.PublicKey) error {
	if len(s.Signatures) == 0 {
		return ErrMissingBindings
	}

	for _, sig := range s.Signatures {
		h, err := keyBindingHash(primary, s.Key, sig)
		if err != nil {
			return &SignatureError{Role: BindingSubkey, KeyID: s.Key.KeyId, Cause: err}
		}
		if err := primary.VerifySignature(h, sig); err != nil {
			return &SignatureError{Role: BindingSubkey, KeyID: s.Key.KeyId, Cause: err}
		}

		if sig.FlagsValid && sig.FlagSign {
			backsig := sig.EmbeddedSignature
			if backsig == nil {
				return ErrMissingEmbeddedSignature
			}
			bh, err := keyBindingHash(primary, s.Key, backsig)
			if err != nil {
				return &SignatureError{Role: BindingPrimary, KeyID: s.Key.KeyId, Cause: err}
			}
			if err := s.Key.VerifySignature(bh, backsig); err != nil {
				return &SignatureError{Role: BindingPrimary, KeyID: s.Key.KeyId, Cause: err}
			}
		}
	}

	return nil
}

// keyBindingHash computes the RFC 9580 key signature hash over the primary
// key followed by the subkey. Forward bindings, subkey revocations and
// embedded reverse bindings are all computed over this same data; they
// differ only in the signing key.
func keyBindingHash(primary, subkey *packet.PublicKey, sig *packet.Signature) (hash.Hash, error) {
	h, err := sig.PrepareVerify()
	if err != nil {
		return nil, err
	}
	if err := primary.SerializeForHash(h); err != nil {
		return nil, err
	}
	if err := subkey.SerializeForHash(h); err != nil {
		return nil, err
	}
	return h, nil
}
