package armor

import (
	"bytes"
	"io"

	pgparmor "github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xpgp", "armor")

// BlockType is the label on armor BEGIN/END lines.
type BlockType string

// Block types defined by RFC 9580.
const (
	PublicKey  BlockType = "PGP PUBLIC KEY BLOCK"
	PrivateKey BlockType = "PGP PRIVATE KEY BLOCK"
	Message    BlockType = "PGP MESSAGE"
	Signature  BlockType = "PGP SIGNATURE"
	File       BlockType = "PGP ARMORED FILE"
)

// ErrNoBlock is returned when the input contains no armor block.
var ErrNoBlock = errors.New("no armor block found")

// Block is one decoded armor block.
type Block struct {
	Type    BlockType
	Headers map[string]string
	Bytes   []byte
}

var (
	beginMark = []byte("-----BEGIN ")
	endMark   = []byte("-----END ")
)

// Decode returns the first armor block in data and the remaining bytes
// after it. It returns a nil block when no block is found or the block is
// malformed; use DecodeBlock to distinguish the two.
func Decode(data []byte) (*Block, []byte) {
	block, rest, err := DecodeBlock(data)
	if err != nil && !errors.Is(err, ErrNoBlock) {
		logger.KV(xlog.WARNING, "reason", "malformed_armor", "err", err.Error())
	}
	return block, rest
}

// DecodeBlock returns the first armor block in data, the remaining bytes
// after its END line, and a decode failure if the block is malformed.
func DecodeBlock(data []byte) (*Block, []byte, error) {
	begin := bytes.Index(data, beginMark)
	if begin < 0 {
		return nil, data, errors.WithStack(ErrNoBlock)
	}

	end := bytes.Index(data[begin:], endMark)
	if end < 0 {
		return nil, data, errors.New("unterminated armor block")
	}
	end += begin
	// consume through the END line's closing dashes; the encoder emits no
	// newline after them, so one is optional
	rest := data[end:]
	if dashes := bytes.Index(rest[len(endMark):], []byte("-----")); dashes >= 0 {
		rest = rest[len(endMark)+dashes+5:]
		if len(rest) > 0 && rest[0] == '\r' {
			rest = rest[1:]
		}
		if len(rest) > 0 && rest[0] == '\n' {
			rest = rest[1:]
		}
	} else {
		rest = nil
	}

	segment := data[begin : len(data)-len(rest)]
	p, err := pgparmor.Decode(bytes.NewReader(segment))
	if err != nil {
		return nil, rest, errors.WithMessage(err, "unable to decode armor")
	}
	body, err := io.ReadAll(p.Body)
	if err != nil {
		return nil, rest, errors.WithMessage(err, "unable to decode armor body")
	}

	return &Block{
		Type:    BlockType(p.Type),
		Headers: p.Header,
		Bytes:   body,
	}, rest, nil
}

// Encode returns a writer that armors its input under the given block
// type. The returned writer must be closed to emit the END line.
func Encode(w io.Writer, typ BlockType, headers map[string]string) (io.WriteCloser, error) {
	aw, err := pgparmor.Encode(w, string(typ), headers)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to encode armor")
	}
	return aw, nil
}

// EncodeWithChecksum is Encode with control over the legacy CRC24 trailer,
// which RFC 9580 deprecates.
func EncodeWithChecksum(w io.Writer, typ BlockType, headers map[string]string, checksum bool) (io.WriteCloser, error) {
	aw, err := pgparmor.EncodeWithChecksumOption(w, string(typ), headers, checksum)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to encode armor")
	}
	return aw, nil
}
