package cli_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patchkraft/patchkraft/internal/adapters/inbound/cli"
)

// project is a temporary directory with a .patchkraft.yaml that keeps
// associations inside it.
type project struct {
	t   *testing.T
	dir string
}

func newProject(t *testing.T, extraConfig string) *project {
	t.Helper()
	dir := t.TempDir()
	cfg := "associations_path: associations.json\n" + extraConfig
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".patchkraft.yaml"), []byte(cfg), 0644))
	return &project{t: t, dir: dir}
}

func (p *project) path(name string) string { return filepath.Join(p.dir, name) }

func (p *project) write(name string, data []byte) string {
	p.t.Helper()
	path := p.path(name)
	require.NoError(p.t, os.WriteFile(path, data, 0644))
	return path
}

func (p *project) read(name string) []byte {
	p.t.Helper()
	data, err := os.ReadFile(p.path(name))
	require.NoError(p.t, err)
	return data
}

// run executes the CLI against the project with stdin.
func (p *project) run(stdin string, args ...string) (string, error) {
	root := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--dir", p.dir}, args...))
	err := root.Execute()
	return out.String(), err
}

// ipsPatch writes data at offset.
func ipsPatch(offset int, data []byte) []byte {
	p := []byte("PATCH")
	p = append(p, byte(offset>>16), byte(offset>>8), byte(offset))
	p = append(p, byte(len(data)>>8), byte(len(data)))
	p = append(p, data...)
	return append(p, "EOF"...)
}

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

// bpsPatch turns source into target with a single target-read action.
func bpsPatch(source, target []byte) []byte {
	p := []byte("BPS1")
	p = appendNumber(p, uint64(len(source)))
	p = appendNumber(p, uint64(len(target)))
	p = appendNumber(p, 0)
	p = appendNumber(p, uint64(len(target)-1)<<2|1)
	p = append(p, target...)
	p = binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(source))
	p = binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(target))
	return binary.LittleEndian.AppendUint32(p, crc32.ChecksumIEEE(p))
}
