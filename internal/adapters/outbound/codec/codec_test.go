package codec

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchkraft/patchkraft/internal/domain"
)

func TestNumberRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 129, 16383, 16384, 1 << 20, 1<<32 + 7} {
		r := &numberReader{data: appendNumber(nil, v)}
		got, err := r.number()
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(r.data), r.pos)
	}
}

func TestNumber_Truncated(t *testing.T) {
	r := &numberReader{data: []byte{0x01}}
	_, err := r.number()
	assert.ErrorIs(t, err, errTruncated)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatIPS, Detect([]byte("PATCH...")))
	assert.Equal(t, FormatBPS, Detect([]byte("BPS1...")))
	assert.Equal(t, FormatUnknown, Detect([]byte("UPS1")))
	assert.Equal(t, FormatUnknown, Detect(nil))
}

func TestIdentify_BPS(t *testing.T) {
	source := []byte("original rom data")
	p := simpleBPS(source, []byte("patched rom data!"))

	info, err := Identify(memFile{bytes.NewReader(p)})
	require.NoError(t, err)
	assert.Equal(t, FormatBPS, info.Format)
	assert.True(t, info.HasSource())
	assert.Equal(t, uint64(len(source)), info.SourceSize)
	assert.Equal(t, crc32.ChecksumIEEE(source), info.SourceCRC)
	assert.Len(t, info.SourceChecksum(), 8)
}

func TestIdentify_IPSHasNoSource(t *testing.T) {
	info, err := Identify(memFile{bytes.NewReader(buildIPS(-1))})
	require.NoError(t, err)
	assert.Equal(t, FormatIPS, info.Format)
	assert.False(t, info.HasSource())
}

func TestIdentify_TinyFile(t *testing.T) {
	info, err := Identify(memFile{bytes.NewReader([]byte("BP"))})
	require.NoError(t, err)
	assert.Equal(t, FormatUnknown, info.Format)

	_, err = Identify(memFile{bytes.NewReader([]byte("BPS1\x80"))})
	assert.Error(t, err)
}

// --- IPS ---

func TestIPS_RecordsAndRLE(t *testing.T) {
	source := []byte("hello world")
	p := buildIPS(-1,
		ipsRecord{offset: 0, data: []byte("HELLO")},
		ipsRecord{offset: 6, data: []byte("*"), rle: 3},
	)
	out, res := applyIPS(p, source, nil)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "HELLO ***ld", string(out))
	assert.Equal(t, "hello world", string(source), "source must not be modified")
}

func TestIPS_ExtendsAndTruncates(t *testing.T) {
	out, res := applyIPS(buildIPS(-1, ipsRecord{offset: 6, data: []byte("xy")}), []byte("abc"), nil)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0, 'x', 'y'}, out)

	out, res = applyIPS(buildIPS(2, ipsRecord{offset: 0, data: []byte("Z")}), []byte("abcdef"), nil)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "Zb", string(out))
}

func TestIPS_NoChangeIsNotice(t *testing.T) {
	_, res := applyIPS(buildIPS(-1, ipsRecord{offset: 1, data: []byte("b")}), []byte("abc"), nil)
	assert.Equal(t, domain.StatusNotice, res.Status)
}

func TestIPS_Malformed(t *testing.T) {
	full := buildIPS(-1, ipsRecord{offset: 0, data: []byte("HELLO")})
	_, res := applyIPS(full[:len(full)-5], []byte("hello"), nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)

	_, res = applyIPS(append(full, 1), []byte("hello"), nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)
}

func TestIPS_ProgressAbort(t *testing.T) {
	var records []ipsRecord
	for i := 0; i < ipsProgressEvery*2; i++ {
		records = append(records, ipsRecord{offset: i, data: []byte{1}})
	}
	_, res := applyIPS(buildIPS(-1, records...), make([]byte, 10), func(int64, int64) bool { return false })
	assert.Equal(t, domain.StatusCancelled, res.Status)
}

// --- BPS ---

func TestBPS_Apply(t *testing.T) {
	source := []byte("original")
	target := []byte("patched!!")
	out, res := applyBPS(simpleBPS(source, target), source, nil)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, target, out)
}

func TestBPS_AllActions(t *testing.T) {
	source := []byte("ABCDEFGH")
	target := []byte("ABCDxyxyxyEF")
	p := buildBPS(source, target, crc32.ChecksumIEEE(target),
		bpsAction{cmd: bpsSourceRead, length: 4},
		bpsAction{cmd: bpsTargetRead, length: 2, data: []byte("xy")},
		bpsAction{cmd: bpsTargetCopy, length: 4, rel: 4},
		bpsAction{cmd: bpsSourceCopy, length: 2, rel: 4},
	)
	out, res := applyBPS(p, source, nil)
	require.Equal(t, domain.StatusOK, res.Status, res.Description)
	assert.Equal(t, string(target), string(out))
}

func TestBPS_WrongTarget(t *testing.T) {
	p := simpleBPS([]byte("original"), []byte("patched"))
	_, res := applyBPS(p, []byte("somethingelse"), nil)
	assert.Equal(t, domain.StatusWrongTarget, res.Status)
	assert.Contains(t, res.Description, "not intended")
}

func TestBPS_AlreadyApplied(t *testing.T) {
	p := simpleBPS([]byte("original"), []byte("patched"))
	_, res := applyBPS(p, []byte("patched"), nil)
	assert.Equal(t, domain.StatusWrongTarget, res.Status)
	assert.Contains(t, res.Description, "already been applied")
}

func TestBPS_CorruptPatch(t *testing.T) {
	p := simpleBPS([]byte("original"), []byte("patched"))
	p[8] ^= 0xff
	_, res := applyBPS(p, []byte("original"), nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)
}

func TestBPS_OutputChecksumMismatchIsWarning(t *testing.T) {
	source := []byte("original")
	target := []byte("patched")
	p := buildBPS(source, target, 0xdeadbeef,
		bpsAction{cmd: bpsTargetRead, length: len(target), data: target})
	out, res := applyBPS(p, source, nil)
	assert.Equal(t, domain.StatusWarning, res.Status)
	assert.Equal(t, target, out)
}

func TestBPS_ActionOverrun(t *testing.T) {
	source := []byte("abcd")
	target := []byte("ab")
	p := buildBPS(source, target, crc32.ChecksumIEEE(target),
		bpsAction{cmd: bpsSourceRead, length: 4})
	_, res := applyBPS(p, source, nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)
}

func TestBPS_TargetCopyOutOfRange(t *testing.T) {
	source := []byte("abcd")
	target := []byte("abab")
	p := buildBPS(source, target, crc32.ChecksumIEEE(target),
		bpsAction{cmd: bpsTargetCopy, length: 4, rel: 0})
	_, res := applyBPS(p, source, nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)
}

// rawCopyBPS builds a patch with one copy action whose raw relative offset
// is written as is, bypassing buildBPS's signed encoding.
func rawCopyBPS(source, target []byte, cmd int, rawRel uint64) []byte {
	p := append([]byte(nil), bpsMagic...)
	p = appendNumber(p, uint64(len(source)))
	p = appendNumber(p, uint64(len(target)))
	p = appendNumber(p, 0)
	if cmd == bpsTargetCopy {
		p = appendNumber(p, 0<<2|bpsTargetRead)
		p = append(p, target[0])
		p = appendNumber(p, uint64(len(target)-2)<<2|uint64(cmd))
	} else {
		p = appendNumber(p, uint64(len(target)-1)<<2|uint64(cmd))
	}
	p = appendNumber(p, rawRel)
	p = binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(source))
	p = binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(target))
	return binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(p))
}

func TestBPS_HugeRelativeOffsetsAreInvalid(t *testing.T) {
	source := []byte("abcd")
	target := []byte("abcd")
	for _, tc := range []struct {
		name string
		cmd  int
		rel  uint64
	}{
		{"source copy forward", bpsSourceCopy, ^uint64(0) - 1},
		{"source copy backward", bpsSourceCopy, ^uint64(0)},
		{"target copy forward", bpsTargetCopy, ^uint64(0) - 1},
		{"target copy backward", bpsTargetCopy, ^uint64(0)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := rawCopyBPS(source, target, tc.cmd, tc.rel)
			require.NotPanics(t, func() {
				_, res := applyBPS(p, source, nil)
				assert.Equal(t, domain.StatusInvalid, res.Status)
			})
		})
	}
}

func TestEngine_HugeSourceCopyOffsetDoesNotPanic(t *testing.T) {
	source := []byte("abcd")
	storage := newMemStorage()
	storage.files["game.bin"] = source
	e := NewEngine(storage, 512, nil)

	p := rawCopyBPS(source, []byte("abcd"), bpsSourceCopy, ^uint64(0)-1)
	var res domain.ApplyResult
	require.NotPanics(t, func() {
		res = e.Apply(context.Background(), domain.ApplyRequest{
			Patch:      patchOf("hack.bps", p),
			Target:     domain.Target{Path: "game.bin"},
			OutputPath: "hack.out",
		})
	})
	assert.Equal(t, domain.StatusInvalid, res.Status)
	assert.NotContains(t, storage.files, "hack.out")
}

func TestBPS_IncompleteOutput(t *testing.T) {
	source := []byte("abcd")
	target := []byte("abcd")
	p := buildBPS(source, target, crc32.ChecksumIEEE(target),
		bpsAction{cmd: bpsSourceRead, length: 2})
	_, res := applyBPS(p, source, nil)
	assert.Equal(t, domain.StatusInvalid, res.Status)
}
