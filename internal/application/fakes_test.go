package application

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/patchkraft/patchkraft/internal/domain"
)

type memFile struct{ *bytes.Reader }

func (m memFile) Len() int64 { return m.Size() }
func (memFile) Close() error { return nil }

type fakePatches map[string][]byte

func (f fakePatches) Open(name string) (domain.File, error) {
	data, ok := f[name]
	if !ok {
		return nil, errors.New("no such patch: " + name)
	}
	return memFile{bytes.NewReader(data)}, nil
}

type fakeTargets map[string][]byte

func (f fakeTargets) Load(path string) ([]byte, error) {
	data, ok := f[path]
	if !ok {
		return nil, errors.New("no such target: " + path)
	}
	return data, nil
}

type match struct {
	path     string
	possible bool
}

// fakeMatcher answers from matches; a patch listed in later gets that answer
// from its second lookup on.
type fakeMatcher struct {
	matches map[string]match
	later   map[string]match
	seen    map[string]int
	calls   int
}

func (f *fakeMatcher) FindTarget(_ context.Context, p domain.Patch) (string, bool) {
	f.calls++
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[p.Name]++
	m := f.matches[p.Name]
	if l, ok := f.later[p.Name]; ok && f.seen[p.Name] > 1 {
		m = l
	}
	return m.path, m.possible
}

// fakeEngine returns results keyed by "patch@target", then "patch", and
// defaults to StatusOK.
type fakeEngine struct {
	mu      sync.Mutex
	results map[string]domain.ApplyStatus
	calls   []domain.ApplyRequest
}

func (f *fakeEngine) Apply(_ context.Context, req domain.ApplyRequest) domain.ApplyResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if req.Progress != nil && !req.Progress(0, 1) {
		return domain.ApplyResult{Status: domain.StatusCancelled, Description: "cancelled"}
	}
	status, ok := f.results[req.Patch.Name+"@"+req.Target.Path]
	if !ok {
		status = f.results[req.Patch.Name]
	}
	return domain.ApplyResult{Status: status, Description: "engine says " + status.String()}
}

func (f *fakeEngine) callsFor(patch string) []domain.ApplyRequest {
	var out []domain.ApplyRequest
	for _, c := range f.calls {
		if c.Patch.Name == patch {
			out = append(out, c)
		}
	}
	return out
}

type fakeHeader struct{ strip bool }

func (f fakeHeader) ShouldStripHeader(domain.Target) bool { return f.strip }

type recordCall struct{ patch, target string }

type fakeRecorder struct{ calls []recordCall }

func (f *fakeRecorder) Record(_ context.Context, p domain.Patch, target string) {
	f.calls = append(f.calls, recordCall{p.Name, target})
}

type fakePicker struct {
	path  string
	ok    bool
	err   error
	calls int
}

func (f *fakePicker) PickTarget(context.Context, []string) (string, bool, error) {
	f.calls++
	return f.path, f.ok, f.err
}

type harness struct {
	patches  fakePatches
	targets  fakeTargets
	matcher  *fakeMatcher
	engine   *fakeEngine
	header   fakeHeader
	recorder *fakeRecorder
	picker   *fakePicker
}

func newHarness() *harness {
	return &harness{
		patches:  fakePatches{},
		targets:  fakeTargets{},
		matcher:  &fakeMatcher{matches: map[string]match{}},
		engine:   &fakeEngine{results: map[string]domain.ApplyStatus{}},
		recorder: &fakeRecorder{},
		picker:   &fakePicker{},
	}
}

func (h *harness) service() *PatchService {
	return NewPatchService(Dependencies{
		Patches: h.patches, Targets: h.targets, Matcher: h.matcher,
		Engine: h.engine, Header: h.header, Recorder: h.recorder, Picker: h.picker,
	}, nil)
}

func (h *harness) addPatches(names ...string) {
	for _, n := range names {
		h.patches[n] = []byte("PATCH" + n)
	}
}
