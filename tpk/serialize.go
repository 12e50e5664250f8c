package tpk

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/effective-security/xpgp/armor"
)

// Serialize writes the certificate as its canonical RFC 9580 packet
// sequence: the primary key packet, the details bundle, then each subkey
// packet followed by its signatures in list order. Packet headers carry
// the smallest sufficient length encoding; framing is produced by the
// packet layer.
func (c *Certificate) Serialize(w io.Writer) error {
	if err := c.PrimaryKey.Serialize(w); err != nil {
		return err
	}
	if err := c.Details.Serialize(w); err != nil {
		return err
	}
	for i := range c.Subkeys {
		if err := c.Subkeys[i].Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Serialize writes the subkey packet followed by its binding signatures.
func (s *Subkey) Serialize(w io.Writer) error {
	if err := s.Key.Serialize(w); err != nil {
		return err
	}
	for _, sig := range s.Signatures {
		if err := sig.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// byteCounter counts emitted bytes without retaining them.
type byteCounter int

func (b *byteCounter) Write(p []byte) (int, error) {
	*b += byteCounter(len(p))
	return len(p), nil
}

// EncodedLength returns the exact number of bytes Serialize emits for this
// certificate, without producing output. Outer containers use it to size
// their length headers before the payload exists.
func (c *Certificate) EncodedLength() (int, error) {
	var n byteCounter
	if err := c.Serialize(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// EncodedLength returns the exact number of bytes Serialize emits for this
// subkey and its signatures.
func (s *Subkey) EncodedLength() (int, error) {
	var n byteCounter
	if err := s.Serialize(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// ArmorOptions controls armored output.
type ArmorOptions struct {
	// Headers are emitted after the BEGIN line.
	Headers map[string]string
	// SkipChecksum omits the legacy CRC24 trailer. RFC 9580 deprecates the
	// checksum; it is kept by default for interop with older readers.
	SkipChecksum bool
}

// SerializeArmored writes the certificate as an ASCII armored PUBLIC KEY
// block.
func (c *Certificate) SerializeArmored(w io.Writer, opts *ArmorOptions) error {
	var headers map[string]string
	checksum := true
	if opts != nil {
		headers = opts.Headers
		checksum = !opts.SkipChecksum
	}
	aw, err := armor.EncodeWithChecksum(w, armor.PublicKey, headers, checksum)
	if err != nil {
		return err
	}
	if err := c.Serialize(aw); err != nil {
		_ = aw.Close()
		return err
	}
	return errors.WithStack(aw.Close())
}

// ArmoredBytes returns the armored certificate as bytes.
func (c *Certificate) ArmoredBytes(opts *ArmorOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.SerializeArmored(&buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArmoredString returns the armored certificate as text.
func (c *Certificate) ArmoredString(opts *ArmorOptions) (string, error) {
	b, err := c.ArmoredBytes(opts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MatchesBlockType reports whether an armor block of the given type can
// carry a transferable public key.
func MatchesBlockType(typ armor.BlockType) bool {
	return typ == armor.PublicKey || typ == armor.File
}
