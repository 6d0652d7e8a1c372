package ingest

// Status is the terminal state a product code reaches during ingestion.
type Status int

const (
	// StatusStored means metadata and the primary document were persisted.
	StatusStored Status = iota

	// StatusSkippedEU means the product carries an EU registration number
	// and the EU-skip policy is enabled. The document fetcher is never
	// called for these codes.
	StatusSkippedEU

	// StatusSkippedEmpty means the upstream had no document payload for
	// the product after retries.
	StatusSkippedEmpty

	// StatusFailed means metadata fetch or persistence failed. Failed
	// codes are retried on the next run.
	StatusFailed
)

// String returns the status name for logging.
func (s Status) String() string {
	switch s {
	case StatusStored:
		return "stored"
	case StatusSkippedEU:
		return "skipped_eu"
	case StatusSkippedEmpty:
		return "skipped_empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report summarizes one ingestion run.
type Report struct {
	// Outcomes holds the terminal status per attempted code.
	Outcomes map[string]Status

	// Attempted is the number of codes the driver processed.
	Attempted int

	Stored       int
	SkippedEU    int
	SkippedEmpty int
	Failed       int
}

func newReport() *Report {
	return &Report{Outcomes: make(map[string]Status)}
}

func (r *Report) record(code string, status Status) {
	r.Outcomes[code] = status
	r.Attempted++

	switch status {
	case StatusStored:
		r.Stored++
	case StatusSkippedEU:
		r.SkippedEU++
	case StatusSkippedEmpty:
		r.SkippedEmpty++
	case StatusFailed:
		r.Failed++
	}
}
