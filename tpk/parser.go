package tpk

import (
	"bytes"
	"io"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/effective-security/xpgp/armor"
	"github.com/effective-security/xpgp/metricskey"
)

// PacketSource is a fallible sequence of parsed OpenPGP packets.
// *packet.Reader satisfies it.
type PacketSource interface {
	Next() (packet.Packet, error)
}

// PacketPeeker adds one-element lookahead to a PacketSource.
type PacketPeeker struct {
	src    PacketSource
	head   packet.Packet
	err    error
	peeked bool
}

// NewPacketPeeker wraps src with lookahead.
func NewPacketPeeker(src PacketSource) *PacketPeeker {
	return &PacketPeeker{src: src}
}

// Peek returns the next packet without consuming it.
func (p *PacketPeeker) Peek() (packet.Packet, error) {
	if !p.peeked {
		p.head, p.err = p.src.Next()
		p.peeked = true
	}
	return p.head, p.err
}

// Next consumes and returns the next packet.
func (p *PacketPeeker) Next() (packet.Packet, error) {
	if p.peeked {
		p.peeked = false
		return p.head, p.err
	}
	return p.src.Next()
}

// KeyBlock is one grouped transferable-key tuple: the primary key, its
// details bundle, and the subkey blocks that follow it on the wire.
// Dropped records packets the grouping skipped; the parser merges it
// into the assembly report.
type KeyBlock struct {
	Primary *packet.PublicKey
	Details *Details
	Subkeys []SubkeyBlock
	Dropped []Diagnostic
}

// GroupFunc consumes packets from the stream up to the next primary key
// packet or stream end and returns one KeyBlock. It returns io.EOF when
// the stream is exhausted. Modeling grouping as a function decouples the
// assembler from packet production and allows synthetic grouped input in
// tests.
type GroupFunc func(*PacketPeeker) (*KeyBlock, error)

// attachment targets while walking a key block
const (
	attachDetails = iota
	attachIdentity
	attachSubkey
	attachDiscard
)

// GroupTransferable is the default grouping: it expects the stream to be
// positioned at a primary public key packet and collects revocations,
// direct signatures, user ids with certifications, and subkeys with their
// trailing signatures, stopping before the next primary key.
func GroupTransferable(pr *PacketPeeker) (*KeyBlock, error) {
	first, err := pr.Next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.WithMessage(err, "malformed packet")
	}

	primary, ok := first.(*packet.PublicKey)
	if !ok || primary.IsSubkey {
		return nil, errors.WithStack(StructuralError("expected primary public key packet"))
	}

	block := &KeyBlock{
		Primary: primary,
		Details: &Details{},
	}

	attach := attachDetails
	for {
		pkt, err := pr.Peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithMessage(err, "malformed packet")
		}

		switch p := pkt.(type) {
		case *packet.PublicKey:
			if !p.IsSubkey {
				// next transferable key
				return block, nil
			}
			_, _ = pr.Next()
			block.Subkeys = append(block.Subkeys, SubkeyBlock{Key: p})
			attach = attachSubkey

		case *packet.UserId:
			_, _ = pr.Next()
			block.Details.Identities = append(block.Details.Identities, &Identity{UserID: p})
			attach = attachIdentity

		case *packet.Signature:
			_, _ = pr.Next()
			switch attach {
			case attachSubkey:
				sk := &block.Subkeys[len(block.Subkeys)-1]
				sk.Signatures = append(sk.Signatures, p)
			case attachIdentity:
				id := block.Details.Identities[len(block.Details.Identities)-1]
				id.Certifications = append(id.Certifications, p)
			case attachDetails:
				if p.SigType == packet.SigTypeKeyRevocation {
					block.Details.Revocations = append(block.Details.Revocations, p)
				} else {
					block.Details.Directs = append(block.Details.Directs, p)
				}
			default:
				block.Dropped = append(block.Dropped, Diagnostic{
					Reason:  DropUnexpectedSignature,
					SigType: p.SigType,
				})
				logger.KV(xlog.TRACE, "reason", "discarded_signature", "sig_type", uint8(p.SigType))
			}

		case *packet.UserAttribute:
			// attribute certifications have no verify surface here; drop
			// the attribute and its trailing signatures
			_, _ = pr.Next()
			block.Dropped = append(block.Dropped, Diagnostic{Reason: DropUnexpectedPacket})
			logger.KV(xlog.TRACE, "reason", "user_attribute_skipped")
			attach = attachDiscard

		default:
			_, _ = pr.Next()
			block.Dropped = append(block.Dropped, Diagnostic{Reason: DropUnexpectedPacket})
			logger.KV(xlog.TRACE, "reason", "unexpected_packet_skipped")
		}
	}

	return block, nil
}

// Parser is a finite, non-restartable sequence of transferable public
// keys read from a packet stream: one element per key block, with a
// malformed block yielding an error element rather than a silent skip.
type Parser struct {
	packets *PacketPeeker
	group   GroupFunc
}

// NewParser reads binary OpenPGP packets from r. The stream is expected
// to start at a primary public key packet.
func NewParser(r io.Reader) *Parser {
	return NewParserFromSource(packet.NewReader(r), GroupTransferable)
}

// NewParserFromSource builds a parser over an explicit packet source and
// grouping function.
func NewParserFromSource(src PacketSource, group GroupFunc) *Parser {
	if group == nil {
		group = GroupTransferable
	}
	return &Parser{
		packets: NewPacketPeeker(src),
		group:   group,
	}
}

// Next returns the next certificate with its assembly report, or io.EOF
// when the stream is exhausted.
func (p *Parser) Next() (*Certificate, *Report, error) {
	defer metricskey.PerfOperation.MeasureSince(time.Now(), "parse")

	block, err := p.group(p.packets)
	if err == io.EOF {
		return nil, nil, io.EOF
	}
	if err != nil {
		return nil, nil, err
	}

	cert, report := Assemble(block.Primary, block.Details, block.Subkeys)
	// grouping-time drops precede assembly-time drops in wire order
	report.Dropped = append(block.Dropped, report.Dropped...)
	return cert, report, nil
}

// ParseArmored reads a single armored transferable public key. The armor
// block type must declare a valid payload: PUBLIC KEY or ARMORED FILE.
func ParseArmored(data []byte) (*Certificate, *Report, error) {
	block, _, err := armor.DecodeBlock(data)
	if err != nil {
		return nil, nil, err
	}
	if !MatchesBlockType(block.Type) {
		return nil, nil, errors.Errorf("unexpected armor block type: %q", block.Type)
	}

	cert, report, err := NewParser(bytes.NewReader(block.Bytes)).Next()
	if err == io.EOF {
		return nil, nil, errors.WithStack(StructuralError("no transferable key in armor block"))
	}
	if err != nil {
		return nil, nil, err
	}
	return cert, report, nil
}
