package history

import "time"

// Status tracks how far a recorded run progressed.
type Status string

const (
	StatusScanned    Status = "scanned"
	StatusConverted  Status = "converted"
	StatusDownloaded Status = "downloaded"
	StatusCleaned    Status = "cleaned"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusScanned,
	StatusConverted,
	StatusDownloaded,
	StatusCleaned,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Run is one recorded conversion workflow.
type Run struct {
	ID           int64
	SessionID    string
	Archive      string
	OutputFormat string
	Status       Status
	GroupCount   int
	FileCount    int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
