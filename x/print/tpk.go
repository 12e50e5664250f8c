// Package print provides helpers to pretty print OpenPGP certificate
// objects to a writer.
package print

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/effective-security/xpgp/tpk"
)

// JSON prints value to out
func JSON(w io.Writer, value interface{}) {
	json, err := json.MarshalIndent(value, "", "  ")
	if err == nil {
		_, _ = w.Write(json)
		_, _ = w.Write([]byte{'\n'})
	}
}

// Certificate prints the key info of one transferable public key
func Certificate(w io.Writer, c *tpk.Certificate) {
	fmt.Fprintf(w, "Fingerprint: %s\n", hex.EncodeToString(c.Fingerprint()))
	fmt.Fprintf(w, "KeyID: %s\n", c.KeyIDString())
	fmt.Fprintf(w, "Algorithm: %s\n", algoName(c.Algorithm()))
	fmt.Fprintf(w, "Created: %s\n", c.CreatedAt().UTC().Format(time.RFC3339))
	if exp := c.ExpiresAt(); exp != nil {
		fmt.Fprintf(w, "Expires: %s\n", exp.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "Expires: never\n")
	}
	for _, id := range c.Details.Identities {
		fmt.Fprintf(w, "Identity: %s\n", id.UserID.Id)
	}
	for i := range c.Subkeys {
		sk := &c.Subkeys[i]
		fmt.Fprintf(w, "Subkey: %s\n", sk.KeyIDString())
		fmt.Fprintf(w, "  Algorithm: %s\n", algoName(sk.Algorithm()))
		fmt.Fprintf(w, "  Created: %s\n", sk.CreatedAt().UTC().Format(time.RFC3339))
		fmt.Fprintf(w, "  Signatures: %d\n", len(sk.Signatures))
	}
}

// Certificates prints the key info of a list of transferable public keys
func Certificates(w io.Writer, list []*tpk.Certificate) {
	for i, c := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "==================================== %d ====================================\n", 1+i)
		Certificate(w, c)
	}
}

func algoName(algo packet.PublicKeyAlgorithm) string {
	switch algo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoRSASignOnly:
		return "RSA"
	case packet.PubKeyAlgoDSA:
		return "DSA"
	case packet.PubKeyAlgoElGamal:
		return "ElGamal"
	case packet.PubKeyAlgoECDSA:
		return "ECDSA"
	case packet.PubKeyAlgoECDH:
		return "ECDH"
	case packet.PubKeyAlgoEdDSA:
		return "EdDSA"
	case packet.PubKeyAlgoX25519:
		return "X25519"
	case packet.PubKeyAlgoX448:
		return "X448"
	case packet.PubKeyAlgoEd25519:
		return "Ed25519"
	case packet.PubKeyAlgoEd448:
		return "Ed448"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(algo))
	}
}
