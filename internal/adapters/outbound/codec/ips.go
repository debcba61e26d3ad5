package codec

import (
	"bytes"

	"github.com/patchkraft/patchkraft/internal/domain"
)

const (
	ipsEOF     = 0x454f46
	ipsMaxSize = 1 << 24
	// ipsProgressEvery is how many records pass between progress polls.
	ipsProgressEvery = 256
)

// applyIPS applies an IPS patch to source. IPS carries no checksums, so a
// patch never reports the wrong target; it reports Notice when it changes
// nothing.
func applyIPS(patch, source []byte, progress domain.ProgressFunc) ([]byte, domain.ApplyResult) {
	out := append([]byte(nil), source...)
	total := int64(len(patch))

	pos := len(ipsMagic)
	for records := 1; ; records++ {
		if pos+3 > len(patch) {
			return nil, invalid("The patch is truncated.")
		}
		offset := int(patch[pos])<<16 | int(patch[pos+1])<<8 | int(patch[pos+2])
		pos += 3
		if offset == ipsEOF {
			break
		}
		if pos+2 > len(patch) {
			return nil, invalid("The patch is truncated.")
		}
		size := int(patch[pos])<<8 | int(patch[pos+1])
		pos += 2

		if size == 0 {
			if pos+3 > len(patch) {
				return nil, invalid("The patch is truncated.")
			}
			count := int(patch[pos])<<8 | int(patch[pos+1])
			value := patch[pos+2]
			pos += 3
			out = grow(out, offset+count)
			for i := 0; i < count; i++ {
				out[offset+i] = value
			}
		} else {
			if pos+size > len(patch) {
				return nil, invalid("The patch is truncated.")
			}
			out = grow(out, offset+size)
			copy(out[offset:], patch[pos:pos+size])
			pos += size
		}

		if records%ipsProgressEvery == 0 && progress != nil && !progress(int64(pos), total) {
			return nil, cancelled()
		}
	}

	switch len(patch) - pos {
	case 0:
	case 3:
		truncate := int(patch[pos])<<16 | int(patch[pos+1])<<8 | int(patch[pos+2])
		out = grow(out, truncate)[:truncate]
	default:
		return nil, invalid("The patch has trailing data after its end marker.")
	}

	if progress != nil && !progress(total, total) {
		return nil, cancelled()
	}
	if len(out) > ipsMaxSize {
		return nil, invalid("The patch output is larger than IPS allows.")
	}
	if bytes.Equal(out, source) {
		return out, domain.ApplyResult{
			Status:      domain.StatusNotice,
			Description: "The patch was applied, but the output is identical to the input. The target was probably patched already.",
		}
	}
	return out, applied()
}

// grow extends b with zeroes to at least n bytes.
func grow(b []byte, n int) []byte {
	if n <= len(b) {
		return b
	}
	return append(b, make([]byte, n-len(b))...)
}

func applied() domain.ApplyResult {
	return domain.ApplyResult{Status: domain.StatusOK, Description: "The patch was applied successfully!"}
}

func invalid(msg string) domain.ApplyResult {
	return domain.ApplyResult{Status: domain.StatusInvalid, Description: msg}
}

func cancelled() domain.ApplyResult {
	return domain.ApplyResult{Status: domain.StatusCancelled, Description: "The patch application was cancelled."}
}
