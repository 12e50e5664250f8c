// Package keyring provides utilities for loading OpenPGP public key
// certificates from armored data and files.
//
// This package supports:
//   - Loading and parsing armored transferable public keys
//   - Reading multiple keys from concatenated armor blocks
//   - Collecting keys from one or many files into a single list
//
// The package is commonly used to build the set of trusted signer keys
// for signature verification workflows.
package keyring
