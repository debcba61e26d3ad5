package domain

import "time"

// Mode names the flow a batch went through.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeAuto   Mode = "auto"
	ModeFixed  Mode = "fixed"
)

// ItemReport is the mode-independent view of one Outcome.
type ItemReport struct {
	Patch       string `json:"patch"`
	Target      string `json:"target,omitempty"`
	Output      string `json:"output,omitempty"`
	Severity    string `json:"severity"`
	Succeeded   bool   `json:"succeeded"`
	Description string `json:"description,omitempty"`
	Pass        int    `json:"pass,omitempty"`
}

// ItemsFrom flattens typed outcomes into reports.
func ItemsFrom[S Severity](outcomes []Outcome[S]) []ItemReport {
	items := make([]ItemReport, 0, len(outcomes))
	for _, o := range outcomes {
		items = append(items, ItemReport{
			Patch:       o.Patch,
			Target:      o.Target,
			Output:      o.Output,
			Severity:    o.Severity.String(),
			Succeeded:   o.Severity.Succeeded(),
			Description: o.Description,
			Pass:        o.Pass,
		})
	}
	return items
}

// BatchReport is everything a caller may want to show about a finished batch.
// Result is the authoritative verdict; the rest is detail.
type BatchReport struct {
	ID        string       `json:"id"`
	Mode      Mode         `json:"mode"`
	Target    string       `json:"target,omitempty"`
	Passes    int          `json:"passes,omitempty"`
	Cancelled bool         `json:"cancelled,omitempty"`
	Worst     string       `json:"worst,omitempty"`
	Result    BatchResult  `json:"result"`
	Items     []ItemReport `json:"items"`
}

// HistoryEntry records one finished batch in the project history.
type HistoryEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commit_hash,omitempty"`
	BatchID    string    `json:"batch_id"`
	Mode       Mode      `json:"mode"`
	Level      Level     `json:"level"`
	Message    string    `json:"message"`
	Patches    int       `json:"patches"`
	Succeeded  int       `json:"succeeded"`
}

// NewHistoryEntry summarizes a report for the history log.
func NewHistoryEntry(r *BatchReport, commit string, now time.Time) HistoryEntry {
	succeeded := 0
	for _, it := range r.Items {
		if it.Succeeded {
			succeeded++
		}
	}
	return HistoryEntry{
		Timestamp:  now,
		CommitHash: commit,
		BatchID:    r.ID,
		Mode:       r.Mode,
		Level:      r.Result.Level,
		Message:    r.Result.Message,
		Patches:    len(r.Items),
		Succeeded:  succeeded,
	}
}
