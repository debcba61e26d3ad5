package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/patchkraft/patchkraft/internal/domain"
)

type memFile struct{ *bytes.Reader }

func (m memFile) Len() int64 { return m.Size() }
func (memFile) Close() error { return nil }

func patchOf(name string, data []byte) domain.Patch {
	return domain.Patch{Name: name, File: memFile{bytes.NewReader(data)}}
}

// appendNumber encodes v in the BPS variable-length form.
func appendNumber(dst []byte, v uint64) []byte {
	for {
		x := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, x|0x80)
		}
		dst = append(dst, x)
		v--
	}
}

type bpsAction struct {
	cmd    int
	length int
	data   []byte // target read
	rel    int    // source or target copy
}

// buildBPS assembles a BPS patch from explicit actions.
func buildBPS(source, target []byte, targetCRC uint32, actions ...bpsAction) []byte {
	p := append([]byte(nil), bpsMagic...)
	p = appendNumber(p, uint64(len(source)))
	p = appendNumber(p, uint64(len(target)))
	p = appendNumber(p, 0)
	for _, a := range actions {
		p = appendNumber(p, uint64(a.length-1)<<2|uint64(a.cmd))
		switch a.cmd {
		case bpsTargetRead:
			p = append(p, a.data...)
		case bpsSourceCopy, bpsTargetCopy:
			d := uint64(a.rel) << 1
			if a.rel < 0 {
				d = uint64(-a.rel)<<1 | 1
			}
			p = appendNumber(p, d)
		}
	}
	p = binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(source))
	p = binary.LittleEndian.AppendUint32(p, targetCRC)
	return binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(p))
}

// simpleBPS writes the whole target with a single TargetRead.
func simpleBPS(source, target []byte) []byte {
	return buildBPS(source, target, crc32.ChecksumIEEE(target),
		bpsAction{cmd: bpsTargetRead, length: len(target), data: target})
}

type ipsRecord struct {
	offset int
	data   []byte
	rle    int
}

func buildIPS(truncate int, records ...ipsRecord) []byte {
	p := append([]byte(nil), ipsMagic...)
	be24 := func(v int) { p = append(p, byte(v>>16), byte(v>>8), byte(v)) }
	for _, r := range records {
		be24(r.offset)
		if r.rle > 0 {
			p = append(p, 0, 0, byte(r.rle>>8), byte(r.rle), r.data[0])
			continue
		}
		p = append(p, byte(len(r.data)>>8), byte(len(r.data)))
		p = append(p, r.data...)
	}
	p = append(p, "EOF"...)
	if truncate >= 0 {
		be24(truncate)
	}
	return p
}

type memStorage struct {
	files    map[string][]byte
	writeErr error
}

func newMemStorage() *memStorage { return &memStorage{files: map[string][]byte{}} }

func (m *memStorage) Load(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("not found: " + path)
	}
	return data, nil
}

func (m *memStorage) Write(path string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}
