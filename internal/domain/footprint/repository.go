package footprint

import "context"

// RunRepository persists analyses and their leaderboard entries.
// SaveRun returns the identifier under which the run was stored.
type RunRepository interface {
	SaveRun(ctx context.Context, run Run) (string, error)
}

// StoredReport describes an archived run snapshot.
type StoredReport struct {
	Key  string
	Size int64
	ETag string
}

// ReportArchive stores run snapshots in object storage.
type ReportArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (StoredReport, error)
}
