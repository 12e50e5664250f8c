// Package tpk models OpenPGP transferable public keys (RFC 9580
// certificates): a primary public key with its identity bindings and
// subkeys, each cryptographically bound to the primary.
//
// This package supports:
//   - Assembling certificates from parsed packet streams
//   - Verifying subkey binding signatures, including the embedded
//     cross-signature required for signing-capable subkeys
//   - Canonical re-serialization to the exact wire byte sequence,
//     with an exact length predictor for outer containers
//   - Derived views: expiration, unsigned projections, armored output
//
// Packet decoding and the signature math itself are delegated to
// github.com/ProtonMail/go-crypto/openpgp/packet.
package tpk
