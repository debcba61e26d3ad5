package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// Format is a supported patch format.
type Format int

const (
	FormatUnknown Format = iota
	FormatIPS
	FormatBPS
)

func (f Format) String() string {
	switch f {
	case FormatIPS:
		return "ips"
	case FormatBPS:
		return "bps"
	default:
		return "unknown"
	}
}

var (
	ipsMagic = []byte("PATCH")
	bpsMagic = []byte("BPS1")
)

const bpsFooterSize = 12

var (
	errTruncated = errors.New("unexpected end of patch")
	errOverflow  = errors.New("number too large")
)

// Info is what can be learned about a patch without applying it.
type Info struct {
	Format     Format
	SourceSize uint64
	SourceCRC  uint32
	TargetSize uint64
	TargetCRC  uint32
}

// HasSource reports whether the patch identifies the file it applies to.
func (i Info) HasSource() bool { return i.Format == FormatBPS }

// SourceChecksum is the source CRC32 as eight hex digits.
func (i Info) SourceChecksum() string { return fmt.Sprintf("%08x", i.SourceCRC) }

// Detect returns the format of a patch from its leading bytes.
func Detect(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, bpsMagic):
		return FormatBPS
	case bytes.HasPrefix(head, ipsMagic):
		return FormatIPS
	default:
		return FormatUnknown
	}
}

// Identify reads only the header and footer of a patch.
func Identify(f domain.File) (Info, error) {
	size := f.Len()
	headLen := int64(len(bpsMagic) + 2*maxNumberLen)
	if headLen > size {
		headLen = size
	}
	head := make([]byte, headLen)
	if headLen > 0 {
		if _, err := f.ReadAt(head, 0); err != nil {
			return Info{}, err
		}
	}

	info := Info{Format: Detect(head)}
	if info.Format != FormatBPS {
		return info, nil
	}
	if size < int64(len(bpsMagic)+bpsFooterSize) {
		return Info{}, fmt.Errorf("bps: %w", errTruncated)
	}

	r := &numberReader{data: head, pos: len(bpsMagic)}
	var err error
	if info.SourceSize, err = r.number(); err != nil {
		return Info{}, fmt.Errorf("bps source size: %w", err)
	}
	if info.TargetSize, err = r.number(); err != nil {
		return Info{}, fmt.Errorf("bps target size: %w", err)
	}

	footer := make([]byte, bpsFooterSize)
	if _, err := f.ReadAt(footer, size-bpsFooterSize); err != nil {
		return Info{}, err
	}
	info.SourceCRC = binary.LittleEndian.Uint32(footer[0:])
	info.TargetCRC = binary.LittleEndian.Uint32(footer[4:])
	return info, nil
}

// maxNumberLen is the longest encoding of a 64-bit BPS number.
const maxNumberLen = 10

type numberReader struct {
	data []byte
	pos  int
}

// number decodes a BPS variable-length integer. The encoding adds the
// shift after every continuation byte so each value has one representation.
func (r *numberReader) number() (uint64, error) {
	var data, shift uint64 = 0, 1
	for i := 0; i < maxNumberLen; i++ {
		if r.pos >= len(r.data) {
			return 0, errTruncated
		}
		x := r.data[r.pos]
		r.pos++
		data += uint64(x&0x7f) * shift
		if x&0x80 != 0 {
			return data, nil
		}
		shift <<= 7
		data += shift
	}
	return 0, errOverflow
}
