package tpk

import (
	"crypto"
	"io"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xpgp", "tpk")

// Certificate is an OpenPGP transferable public key: a primary public key
// with its identity details and bound subkeys. A Certificate is immutable
// after assembly; verification, serialization and projections are pure
// reads and safe to invoke concurrently.
type Certificate struct {
	PrimaryKey *packet.PublicKey
	Details    *Details
	Subkeys    []Subkey
}

// Subkey is a public subkey with the binding signatures that tie it to the
// primary key. Only subkey binding and subkey revocation signatures are
// retained.
type Subkey struct {
	Key        *packet.PublicKey
	Signatures []*packet.Signature
}

// SubkeyBlock is a grouped (subkey material, trailing signatures) pair as
// produced by packet grouping, before assembly filtering.
type SubkeyBlock struct {
	Key        *packet.PublicKey
	Signatures []*packet.Signature
}

// DropReason classifies an element discarded during assembly.
type DropReason string

const (
	// DropUnsignedSubkey marks a subkey discarded for having no signatures.
	DropUnsignedSubkey DropReason = "unsigned_subkey"
	// DropUnexpectedSignature marks a signature of a type other than subkey
	// binding or subkey revocation trailing a subkey packet.
	DropUnexpectedSignature DropReason = "unexpected_signature"
	// DropUnexpectedPacket marks a packet skipped during grouping.
	DropUnexpectedPacket DropReason = "unexpected_packet"
)

// Diagnostic describes one element dropped while assembling a certificate.
type Diagnostic struct {
	Reason  DropReason
	KeyID   uint64
	SigType packet.SignatureType
}

// Report collects non-fatal diagnostics emitted during assembly. Dropped
// elements are never surfaced as errors; callers that care inspect the
// report.
type Report struct {
	Dropped []Diagnostic
}

// Clean returns true when assembly dropped nothing.
func (r *Report) Clean() bool {
	return len(r.Dropped) == 0
}

func (r *Report) drop(d Diagnostic) {
	r.Dropped = append(r.Dropped, d)
}

// Assemble builds a Certificate from grouped key-block material. Subkeys
// without signatures are discarded, and retained subkeys keep only binding
// and revocation signatures; both cases are recorded in the returned
// Report rather than raised as errors.
func Assemble(primary *packet.PublicKey, details *Details, subkeys []SubkeyBlock) (*Certificate, *Report) {
	report := &Report{}
	if details == nil {
		details = &Details{}
	}

	cert := &Certificate{
		PrimaryKey: primary,
		Details:    details,
	}

	for _, sk := range subkeys {
		retained := make([]*packet.Signature, 0, len(sk.Signatures))
		for _, sig := range sk.Signatures {
			if sig.SigType != packet.SigTypeSubkeyBinding &&
				sig.SigType != packet.SigTypeSubkeyRevocation {
				logger.KV(xlog.WARNING,
					"reason", DropUnexpectedSignature,
					"key_id", sk.Key.KeyIdString(),
					"sig_type", uint8(sig.SigType))
				report.drop(Diagnostic{
					Reason:  DropUnexpectedSignature,
					KeyID:   sk.Key.KeyId,
					SigType: sig.SigType,
				})
				continue
			}
			retained = append(retained, sig)
		}

		if len(retained) == 0 {
			logger.KV(xlog.WARNING,
				"reason", DropUnsignedSubkey,
				"key_id", sk.Key.KeyIdString())
			report.drop(Diagnostic{
				Reason: DropUnsignedSubkey,
				KeyID:  sk.Key.KeyId,
			})
			continue
		}

		cert.Subkeys = append(cert.Subkeys, Subkey{
			Key:        sk.Key,
			Signatures: retained,
		})
	}

	return cert, report
}

// Fingerprint returns the primary key fingerprint.
func (c *Certificate) Fingerprint() []byte {
	return c.PrimaryKey.Fingerprint
}

// KeyID returns the primary key id.
func (c *Certificate) KeyID() uint64 {
	return c.PrimaryKey.KeyId
}

// KeyIDString returns the hex encoded primary key id.
func (c *Certificate) KeyIDString() string {
	return c.PrimaryKey.KeyIdString()
}

// Algorithm returns the primary key public key algorithm.
func (c *Certificate) Algorithm() packet.PublicKeyAlgorithm {
	return c.PrimaryKey.PubKeyAlgo
}

// CreatedAt returns the primary key creation time.
func (c *Certificate) CreatedAt() time.Time {
	return c.PrimaryKey.CreationTime
}

// PublicKey returns the primary key public parameters.
func (c *Certificate) PublicKey() crypto.PublicKey {
	return c.PrimaryKey.PublicKey
}

// ExpiresAt returns the key expiration time derived from the details
// bundle, or nil when no key expiration subpacket is present: a key
// without the subpacket never expires.
func (c *Certificate) ExpiresAt() *time.Time {
	d := c.Details.KeyExpiration()
	if d == nil {
		return nil
	}
	t := c.PrimaryKey.CreationTime.Add(*d)
	return &t
}

// EncryptSessionKey writes a public-key encrypted session key packet for
// the primary key. Pure pass-through to the packet layer.
func (c *Certificate) EncryptSessionKey(w io.Writer, cipherFunc packet.CipherFunction, key []byte, config *packet.Config) error {
	return packet.SerializeEncryptedKey(w, c.PrimaryKey, cipherFunc, key, config)
}

// Clone returns an independently owned copy. Parsed packet values are
// immutable and shared; all list structure is copied.
func (c *Certificate) Clone() *Certificate {
	out := &Certificate{
		PrimaryKey: c.PrimaryKey,
		Details:    c.Details.clone(),
	}
	if c.Subkeys != nil {
		out.Subkeys = make([]Subkey, len(c.Subkeys))
		for i, sk := range c.Subkeys {
			out.Subkeys[i] = Subkey{
				Key:        sk.Key,
				Signatures: append([]*packet.Signature(nil), sk.Signatures...),
			}
		}
	}
	return out
}

// Fingerprint returns the subkey fingerprint. A subkey never inherits the
// primary key identity.
func (s *Subkey) Fingerprint() []byte {
	return s.Key.Fingerprint
}

// KeyID returns the subkey key id.
func (s *Subkey) KeyID() uint64 {
	return s.Key.KeyId
}

// KeyIDString returns the hex encoded subkey key id.
func (s *Subkey) KeyIDString() string {
	return s.Key.KeyIdString()
}

// Algorithm returns the subkey public key algorithm.
func (s *Subkey) Algorithm() packet.PublicKeyAlgorithm {
	return s.Key.PubKeyAlgo
}

// CreatedAt returns the subkey creation time.
func (s *Subkey) CreatedAt() time.Time {
	return s.Key.CreationTime
}

// PublicKey returns the subkey public parameters.
func (s *Subkey) PublicKey() crypto.PublicKey {
	return s.Key.PublicKey
}

// EncryptSessionKey writes a public-key encrypted session key packet for
// this subkey.
func (s *Subkey) EncryptSessionKey(w io.Writer, cipherFunc packet.CipherFunction, key []byte, config *packet.Config) error {
	return packet.SerializeEncryptedKey(w, s.Key, cipherFunc, key, config)
}
