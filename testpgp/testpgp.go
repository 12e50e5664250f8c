// Package testpgp builds OpenPGP transferable public keys with real
// signatures for use in tests.
package testpgp

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/effective-security/xpgp/tpk"
)

// CreatedAt is the fixed creation time of generated keys.
var CreatedAt = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

// Entity is a generated certificate together with the private keys and the
// pre-assembly material that produced it.
type Entity struct {
	PrimaryPrivate *packet.PrivateKey
	SubkeyPrivates []*packet.PrivateKey

	// pre-assembly material, useful to exercise the assembler directly
	Primary      *packet.PublicKey
	Details      *tpk.Details
	SubkeyBlocks []tpk.SubkeyBlock

	Certificate *tpk.Certificate
	Report      *tpk.Report
}

type configuration struct {
	userIDs     []string
	keyLifetime *uint32
	subkeys     []subkeyConfig
}

type subkeyConfig struct {
	signing    bool
	noBacksig  bool
	revoked    bool
	unsigned   bool
	extraTypes []packet.SignatureType
}

// Option configures certificate generation.
type Option func(*configuration)

// UserID adds a user id with a positive self-certification.
func UserID(id string) Option {
	return func(c *configuration) {
		c.userIDs = append(c.userIDs, id)
	}
}

// KeyLifetime sets the key expiration subpacket on the first
// self-certification.
func KeyLifetime(secs uint32) Option {
	return func(c *configuration) {
		c.keyLifetime = &secs
	}
}

// EncryptionSubkey adds a storage/communications encryption subkey with a
// valid binding signature.
func EncryptionSubkey() Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{})
	}
}

// SigningSubkey adds a signing-capable subkey with a valid binding and
// embedded cross-signature.
func SigningSubkey() Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{signing: true})
	}
}

// SigningSubkeyWithoutBacksig adds a signing-capable subkey whose binding
// lacks the embedded cross-signature.
func SigningSubkeyWithoutBacksig() Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{signing: true, noBacksig: true})
	}
}

// RevokedSubkey adds an encryption subkey carrying both a binding and a
// revocation signature.
func RevokedSubkey() Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{revoked: true})
	}
}

// UnsignedSubkey adds a subkey with no signatures at all; assembly drops
// it.
func UnsignedSubkey() Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{unsigned: true})
	}
}

// SubkeyWithExtraSignature adds an encryption subkey trailed by an
// additional signature of the given type; assembly filters it out unless
// it is a binding or revocation.
func SubkeyWithExtraSignature(typ packet.SignatureType) Option {
	return func(c *configuration) {
		c.subkeys = append(c.subkeys, subkeyConfig{extraTypes: []packet.SignatureType{typ}})
	}
}

var (
	poolOnce sync.Once
	pool     []*rsa.PrivateKey
)

// key generation dominates test cost, share a small pool
func poolKey(i int) *rsa.PrivateKey {
	poolOnce.Do(func() {
		pool = make([]*rsa.PrivateKey, 4)
		for n := range pool {
			k, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				panic(err)
			}
			pool[n] = k
		}
	})
	return pool[i%len(pool)]
}

// NewEntity builds a certificate per the options, panicking on failure.
// Without options the certificate has one user id and no subkeys.
func NewEntity(opts ...Option) *Entity {
	cfg := &configuration{}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.userIDs) == 0 {
		cfg.userIDs = []string{"Test User <test@example.com>"}
	}

	primaryPriv := packet.NewRSAPrivateKey(CreatedAt, poolKey(0))
	primary := &primaryPriv.PublicKey

	e := &Entity{
		PrimaryPrivate: primaryPriv,
		Primary:        primary,
		Details:        &tpk.Details{},
	}

	for n, id := range cfg.userIDs {
		// parser-shape user id packet; NewUserId rejects ids that carry
		// the usual <email> brackets
		uid := &packet.UserId{Id: id}
		sig := &packet.Signature{
			Version:      4,
			SigType:      packet.SigTypePositiveCert,
			PubKeyAlgo:   packet.PubKeyAlgoRSA,
			Hash:         crypto.SHA256,
			CreationTime: CreatedAt,
			IssuerKeyId:  &primary.KeyId,
			FlagsValid:   true,
			FlagCertify:  true,
			FlagSign:     true,
		}
		if n == 0 && cfg.keyLifetime != nil {
			sig.KeyLifetimeSecs = cfg.keyLifetime
		}
		if err := sig.SignUserId(uid.Id, primary, primaryPriv, nil); err != nil {
			panic(err)
		}
		e.Details.Identities = append(e.Details.Identities, &tpk.Identity{
			UserID:         uid,
			Certifications: []*packet.Signature{sig},
		})
	}

	for n, sk := range cfg.subkeys {
		subPriv := packet.NewRSAPrivateKey(CreatedAt.Add(time.Hour), poolKey(1+n))
		subPriv.IsSubkey = true
		sub := &subPriv.PublicKey
		e.SubkeyPrivates = append(e.SubkeyPrivates, subPriv)

		block := tpk.SubkeyBlock{Key: sub}
		if !sk.unsigned {
			block.Signatures = append(block.Signatures, bindSubkey(primary, primaryPriv, sub, subPriv, sk))
			if sk.revoked {
				block.Signatures = append(block.Signatures, revokeSubkey(primary, primaryPriv, sub))
			}
			for _, typ := range sk.extraTypes {
				block.Signatures = append(block.Signatures, extraSignature(primary, primaryPriv, typ))
			}
		}
		e.SubkeyBlocks = append(e.SubkeyBlocks, block)
	}

	e.Certificate, e.Report = tpk.Assemble(primary, e.Details, e.SubkeyBlocks)
	return e
}

func bindSubkey(primary *packet.PublicKey, primaryPriv *packet.PrivateKey, sub *packet.PublicKey, subPriv *packet.PrivateKey, sk subkeyConfig) *packet.Signature {
	sig := &packet.Signature{
		Version:      4,
		SigType:      packet.SigTypeSubkeyBinding,
		PubKeyAlgo:   packet.PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: CreatedAt.Add(time.Hour),
		IssuerKeyId:  &primary.KeyId,
		FlagsValid:   true,
	}
	if sk.signing {
		sig.FlagSign = true
		if !sk.noBacksig {
			backsig := &packet.Signature{
				Version:      4,
				SigType:      packet.SigTypePrimaryKeyBinding,
				PubKeyAlgo:   packet.PubKeyAlgoRSA,
				Hash:         crypto.SHA256,
				CreationTime: CreatedAt.Add(time.Hour),
				IssuerKeyId:  &sub.KeyId,
			}
			// cross-sign before SignKey so the embedded subpacket is hashed
			if err := backsig.CrossSignKey(sub, primary, subPriv, nil); err != nil {
				panic(err)
			}
			sig.EmbeddedSignature = backsig
		}
	} else {
		sig.FlagEncryptCommunications = true
		sig.FlagEncryptStorage = true
	}
	if err := sig.SignKey(sub, primaryPriv, nil); err != nil {
		panic(err)
	}
	return sig
}

func revokeSubkey(primary *packet.PublicKey, primaryPriv *packet.PrivateKey, sub *packet.PublicKey) *packet.Signature {
	sig := &packet.Signature{
		Version:      4,
		SigType:      packet.SigTypeSubkeyRevocation,
		PubKeyAlgo:   packet.PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: CreatedAt.Add(2 * time.Hour),
		IssuerKeyId:  &primary.KeyId,
	}
	if err := sig.SignKey(sub, primaryPriv, nil); err != nil {
		panic(err)
	}
	return sig
}

// extraSignature produces a signature of an arbitrary type to play the
// role of a wrong-typed signature trailing a subkey packet.
func extraSignature(primary *packet.PublicKey, primaryPriv *packet.PrivateKey, typ packet.SignatureType) *packet.Signature {
	sig := &packet.Signature{
		Version:      4,
		SigType:      typ,
		PubKeyAlgo:   packet.PubKeyAlgoRSA,
		Hash:         crypto.SHA256,
		CreationTime: CreatedAt.Add(2 * time.Hour),
		IssuerKeyId:  &primary.KeyId,
	}
	if err := sig.SignUserId("extra", primary, primaryPriv, nil); err != nil {
		panic(err)
	}
	return sig
}
