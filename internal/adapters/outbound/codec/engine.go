package codec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// Storage is where targets are read from and outputs written to.
type Storage interface {
	Load(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// Engine implements domain.PatchEngine for IPS and BPS patches.
type Engine struct {
	storage    Storage
	headerSize int
	logger     *slog.Logger
}

// NewEngine creates an Engine. headerSize is the copier header length that
// relaxed applications may try stripping.
func NewEngine(storage Storage, headerSize int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{storage: storage, headerSize: headerSize, logger: logger}
}

// Apply applies one patch and writes the output. Every failure is reported
// through the result.
func (e *Engine) Apply(ctx context.Context, req domain.ApplyRequest) domain.ApplyResult {
	if ctx.Err() != nil {
		return cancelled()
	}

	patch, err := req.Patch.Bytes()
	if err != nil {
		return invalid(fmt.Sprintf("Couldn't read the patch: %v", err))
	}
	format := Detect(patch)
	if format == FormatUnknown {
		return invalid("This is not a supported patch format.")
	}

	source := req.Target.Contents
	if source == nil {
		source, err = e.storage.Load(req.Target.Path)
		if err != nil {
			return domain.ApplyResult{
				Status:      domain.StatusTargetReadFailed,
				Description: fmt.Sprintf("Couldn't read the input target: %v", err),
			}
		}
	}

	progress := func(done, total int64) bool {
		if ctx.Err() != nil {
			return false
		}
		return req.Progress == nil || req.Progress(done, total)
	}

	strip := req.StripHeader && len(source) > e.headerSize
	out, res := e.attempt(format, patch, source, strip, progress)
	if res.Status == domain.StatusWrongTarget && req.Relaxed && e.canRetryHeader(source, strip) {
		e.logger.Debug("retrying with opposite header decision", "patch", req.Patch.Name, "strip", !strip)
		if altOut, altRes := e.attempt(format, patch, source, !strip, progress); altRes.Status != domain.StatusWrongTarget {
			out, res, strip = altOut, altRes, !strip
		}
	}
	if !res.Status.Succeeded() {
		return res
	}

	if strip {
		out = append(append(make([]byte, 0, e.headerSize+len(out)), source[:e.headerSize]...), out...)
	}
	if err := e.storage.Write(req.OutputPath, out); err != nil {
		return domain.ApplyResult{
			Status:      domain.StatusWriteFailed,
			Description: fmt.Sprintf("Couldn't write the output: %v", err),
		}
	}
	return res
}

func (e *Engine) attempt(format Format, patch, source []byte, strip bool, progress domain.ProgressFunc) ([]byte, domain.ApplyResult) {
	body := source
	if strip {
		body = source[e.headerSize:]
	}
	switch format {
	case FormatIPS:
		return applyIPS(patch, body, progress)
	default:
		return applyBPS(patch, body, progress)
	}
}

// canRetryHeader reports whether the opposite header decision is plausible:
// undoing a strip always is, adding one only when the size leaves exactly a
// header's worth over a 1 KiB boundary.
func (e *Engine) canRetryHeader(source []byte, stripped bool) bool {
	if stripped {
		return true
	}
	return e.headerSize > 0 && len(source) > e.headerSize && len(source)%1024 == e.headerSize
}
