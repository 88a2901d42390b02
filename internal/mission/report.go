package mission

// ReportStatus is the overall outcome of an execution attempt. It is the
// only field callers should branch on programmatically.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusError     ReportStatus = "error"
)

// String returns the string representation of the status.
func (s ReportStatus) String() string {
	return string(s)
}

// SegmentResult records one segment that ran to completion.
type SegmentResult struct {
	Index     int         `json:"index"`
	Type      SegmentKind `json:"type"`
	ElapsedMS float64     `json:"elapsed_ms"`
}

// Report is the execution report for a single mission attempt. It is
// created pending, mutated by the execution engine as segments run, and
// immutable once returned to the caller.
type Report struct {
	Status           ReportStatus    `json:"status"`
	ExecutedSegments []SegmentResult `json:"executed_segments"`
	FailedSegment    *int            `json:"failed_segment"`
	Errors           []string        `json:"errors"`
}

// NewReport creates a pending report.
func NewReport() *Report {
	return &Report{
		Status:           ReportStatusPending,
		ExecutedSegments: make([]SegmentResult, 0),
		Errors:           make([]string, 0),
	}
}

// recordSegment appends a completed segment entry.
func (r *Report) recordSegment(index int, kind SegmentKind, elapsedMS float64) {
	r.ExecutedSegments = append(r.ExecutedSegments, SegmentResult{
		Index:     index,
		Type:      kind,
		ElapsedMS: elapsedMS,
	})
}

// fail marks the report as errored at the given segment index.
func (r *Report) fail(index int, err error) {
	r.Status = ReportStatusError
	r.FailedSegment = &index
	r.Errors = append(r.Errors, err.Error())
}
