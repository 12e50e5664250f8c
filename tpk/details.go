package tpk

import (
	"io"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/effective-security/xlog"
)

// Details bundles the identity bindings of a primary key: key revocation
// signatures, direct key signatures, and user ids with their
// certifications.
type Details struct {
	Revocations []*packet.Signature
	Directs     []*packet.Signature
	Identities  []*Identity
}

// Identity is a user id with the certification signatures attached to it.
type Identity struct {
	UserID         *packet.UserId
	Certifications []*packet.Signature
}

// Verify checks the bundle's signatures against the primary key: key
// revocations, direct key signatures, and identity self-certifications.
// Certifications issued by a third party cannot be checked without that
// party's key and are skipped.
func (d *Details) Verify(primary *packet.PublicKey) error {
	for _, sig := range d.Revocations {
		if err := primary.VerifyRevocationSignature(sig); err != nil {
			return &SignatureError{Role: BindingIdentity, KeyID: primary.KeyId, Cause: err}
		}
	}
	for _, sig := range d.Directs {
		if err := primary.VerifyDirectKeySignature(sig); err != nil {
			return &SignatureError{Role: BindingIdentity, KeyID: primary.KeyId, Cause: err}
		}
	}
	for _, id := range d.Identities {
		for _, sig := range id.Certifications {
			if sig.IssuerKeyId != nil && *sig.IssuerKeyId != primary.KeyId {
				logger.KV(xlog.TRACE,
					"reason", "third_party_certification",
					"issuer", *sig.IssuerKeyId,
					"uid", id.UserID.Id)
				continue
			}
			if err := primary.VerifyUserIdSignature(id.UserID.Id, primary, sig); err != nil {
				return &SignatureError{Role: BindingIdentity, KeyID: primary.KeyId, Cause: err}
			}
		}
	}
	return nil
}

// KeyExpiration returns the key lifetime reported by the bundle, or nil
// when no signature carries a key expiration subpacket. Direct key
// signatures take precedence over identity self-certifications.
func (d *Details) KeyExpiration() *time.Duration {
	for _, sig := range d.Directs {
		if sig.KeyLifetimeSecs != nil {
			lt := time.Duration(*sig.KeyLifetimeSecs) * time.Second
			return &lt
		}
	}
	for _, id := range d.Identities {
		for _, sig := range id.Certifications {
			if sig.KeyLifetimeSecs != nil {
				lt := time.Duration(*sig.KeyLifetimeSecs) * time.Second
				return &lt
			}
		}
	}
	return nil
}

// Serialize writes the bundle in canonical order: revocations, direct key
// signatures, then each user id packet followed by its certifications.
func (d *Details) Serialize(w io.Writer) error {
	for _, sig := range d.Revocations {
		if err := sig.Serialize(w); err != nil {
			return err
		}
	}
	for _, sig := range d.Directs {
		if err := sig.Serialize(w); err != nil {
			return err
		}
	}
	for _, id := range d.Identities {
		if err := id.UserID.Serialize(w); err != nil {
			return err
		}
		for _, sig := range id.Certifications {
			if err := sig.Serialize(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// asUnsigned projects the bundle to its user ids, dropping all signatures.
func (d *Details) asUnsigned() []*packet.UserId {
	if len(d.Identities) == 0 {
		return nil
	}
	ids := make([]*packet.UserId, len(d.Identities))
	for i, id := range d.Identities {
		ids[i] = id.UserID
	}
	return ids
}

func (d *Details) clone() *Details {
	if d == nil {
		return &Details{}
	}
	out := &Details{
		Revocations: append([]*packet.Signature(nil), d.Revocations...),
		Directs:     append([]*packet.Signature(nil), d.Directs...),
	}
	if d.Identities != nil {
		out.Identities = make([]*Identity, len(d.Identities))
		for i, id := range d.Identities {
			out.Identities[i] = &Identity{
				UserID:         id.UserID,
				Certifications: append([]*packet.Signature(nil), id.Certifications...),
			}
		}
	}
	return out
}
