package tpk

import (
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// KeyFlags are the capabilities a binding signature grants a key.
type KeyFlags struct {
	Valid                 bool
	Certify               bool
	Sign                  bool
	EncryptCommunications bool
	EncryptStorage        bool
	Authenticate          bool
}

func keyFlagsOf(sig *packet.Signature) KeyFlags {
	return KeyFlags{
		Valid:                 sig.FlagsValid,
		Certify:               sig.FlagCertify,
		Sign:                  sig.FlagSign,
		EncryptCommunications: sig.FlagEncryptCommunications,
		EncryptStorage:        sig.FlagEncryptStorage,
		Authenticate:          sig.FlagAuthenticate,
	}
}

// UnsignedCertificate is the signature-free projection of a certificate:
// the primary key, bare user ids, and subkeys reduced to key material plus
// the capabilities and optional reverse signature taken from a binding.
type UnsignedCertificate struct {
	PrimaryKey *packet.PublicKey
	UserIDs    []*packet.UserId
	Subkeys    []UnsignedSubkey
}

// UnsignedSubkey is a subkey stripped to its key material, granted key
// flags, and the embedded reverse signature when one was present.
type UnsignedSubkey struct {
	Key      *packet.PublicKey
	Flags    KeyFlags
	Embedded *packet.Signature
}

// AsUnsigned computes a fresh unsigned projection. Each subkey is derived
// from its FIRST signature in list order only: that signature's key flags
// and embedded signature are kept, later ones are ignored. Note the
// asymmetry with Verify, which checks every signature in the list; the
// first-signature rule is deliberate and input-order dependent.
func (c *Certificate) AsUnsigned() *UnsignedCertificate {
	out := &UnsignedCertificate{
		PrimaryKey: c.PrimaryKey,
		UserIDs:    c.Details.asUnsigned(),
	}
	if len(c.Subkeys) == 0 {
		return out
	}
	out.Subkeys = make([]UnsignedSubkey, len(c.Subkeys))
	for i := range c.Subkeys {
		out.Subkeys[i] = c.Subkeys[i].asUnsigned()
	}
	return out
}

func (s *Subkey) asUnsigned() UnsignedSubkey {
	// assembly guarantees at least one signature
	sig := s.Signatures[0]
	return UnsignedSubkey{
		Key:      s.Key,
		Flags:    keyFlagsOf(sig),
		Embedded: sig.EmbeddedSignature,
	}
}
