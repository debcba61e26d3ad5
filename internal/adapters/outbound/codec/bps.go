package codec

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/patchkraft/patchkraft/internal/domain"
)

const (
	bpsSourceRead = iota
	bpsTargetRead
	bpsSourceCopy
	bpsTargetCopy
)

const (
	// bpsMaxTarget caps the output allocation for hostile headers.
	bpsMaxTarget = 1 << 30
	// bpsProgressEvery is how many output bytes pass between progress polls.
	bpsProgressEvery = 1 << 16
)

// applyBPS applies a BPS patch to source. Source size and checksum decide
// whether this is the right target; the target checksum only downgrades the
// result to a warning.
func applyBPS(patch, source []byte, progress domain.ProgressFunc) ([]byte, domain.ApplyResult) {
	if len(patch) < len(bpsMagic)+3+bpsFooterSize {
		return nil, invalid("The patch is truncated.")
	}
	footer := patch[len(patch)-bpsFooterSize:]
	sourceCRC := binary.LittleEndian.Uint32(footer[0:])
	targetCRC := binary.LittleEndian.Uint32(footer[4:])
	patchCRC := binary.LittleEndian.Uint32(footer[8:])
	if crc32.ChecksumIEEE(patch[:len(patch)-4]) != patchCRC {
		return nil, invalid("The patch is corrupt: its checksum doesn't match.")
	}

	r := &numberReader{data: patch[:len(patch)-bpsFooterSize], pos: len(bpsMagic)}
	sourceSize, err := r.number()
	if err != nil {
		return nil, invalid("The patch header is malformed.")
	}
	targetSize, err := r.number()
	if err != nil {
		return nil, invalid("The patch header is malformed.")
	}
	metaSize, err := r.number()
	if err != nil || metaSize > uint64(len(r.data)-r.pos) {
		return nil, invalid("The patch header is malformed.")
	}
	r.pos += int(metaSize)

	actual := crc32.ChecksumIEEE(source)
	if sourceSize != uint64(len(source)) || sourceCRC != actual {
		if targetSize == uint64(len(source)) && targetCRC == actual {
			return nil, domain.ApplyResult{
				Status:      domain.StatusWrongTarget,
				Description: "This patch has already been applied to this target.",
			}
		}
		return nil, domain.ApplyResult{
			Status:      domain.StatusWrongTarget,
			Description: "This patch is not intended for this target.",
		}
	}
	if targetSize > bpsMaxTarget {
		return nil, invalid("The patch output is too large.")
	}

	out := make([]byte, int(targetSize))
	outOff, sourceRel, targetRel := 0, 0, 0
	nextPoll := bpsProgressEvery
	for r.pos < len(r.data) {
		n, err := r.number()
		if err != nil {
			return nil, invalid("The patch is malformed.")
		}
		cmd := n & 3
		if n>>2 >= uint64(len(out)-outOff) {
			return nil, invalid("The patch writes past the end of its output.")
		}
		length := int(n>>2) + 1

		switch cmd {
		case bpsSourceRead:
			if outOff+length > len(source) {
				return nil, invalid("The patch reads past the end of its input.")
			}
			copy(out[outOff:], source[outOff:outOff+length])
		case bpsTargetRead:
			if length > len(r.data)-r.pos {
				return nil, invalid("The patch is truncated.")
			}
			copy(out[outOff:], r.data[r.pos:r.pos+length])
			r.pos += length
		case bpsSourceCopy:
			d, err := r.number()
			if err != nil {
				return nil, invalid("The patch is malformed.")
			}
			var ok bool
			if sourceRel, ok = seek(sourceRel, d, len(source)); !ok || sourceRel > len(source)-length {
				return nil, invalid("The patch reads past the end of its input.")
			}
			copy(out[outOff:], source[sourceRel:sourceRel+length])
			sourceRel += length
		case bpsTargetCopy:
			d, err := r.number()
			if err != nil {
				return nil, invalid("The patch is malformed.")
			}
			var ok bool
			if targetRel, ok = seek(targetRel, d, outOff); !ok || targetRel >= outOff {
				return nil, invalid("The patch copies from outside its output.")
			}
			// Byte by byte: the ranges may overlap and repeat.
			for i := 0; i < length; i++ {
				out[outOff+i] = out[targetRel+i]
			}
			targetRel += length
		}
		outOff += length

		if outOff >= nextPoll {
			nextPoll = outOff + bpsProgressEvery
			if progress != nil && !progress(int64(outOff), int64(len(out))) {
				return nil, cancelled()
			}
		}
	}

	if outOff != len(out) {
		return nil, invalid("The patch ends before its output is complete.")
	}
	if progress != nil && !progress(int64(len(out)), int64(len(out))) {
		return nil, cancelled()
	}
	if crc32.ChecksumIEEE(out) != targetCRC {
		return out, domain.ApplyResult{
			Status:      domain.StatusWarning,
			Description: "The patch was applied, but the output checksum doesn't match. The result may be mangled.",
		}
	}
	return out, applied()
}

// relative decodes a signed BPS offset: the low bit is the sign.
// seek moves pos by the signed BPS offset d. The result must stay within
// [0, limit]; pos itself is already in that range.
func seek(pos int, d uint64, limit int) (int, bool) {
	mag := d >> 1
	if mag > uint64(limit) {
		return 0, false
	}
	if d&1 != 0 {
		pos -= int(mag)
	} else {
		pos += int(mag)
	}
	return pos, pos >= 0 && pos <= limit
}
