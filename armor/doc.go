// Package armor reads and writes ASCII armor, the text encoding wrapper
// for binary OpenPGP data.
//
// It exposes whole-buffer block decoding with a remainder, suited to
// scanning files that concatenate several armored blocks, and delegates
// the base64 body transcoding to
// github.com/ProtonMail/go-crypto/openpgp/armor.
package armor
