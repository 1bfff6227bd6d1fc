package db

// Election is a stored count: the contest parameters and when it was counted.
// Vote quantities are stored as exact rational strings ("4/5", "12") so
// Gregory results round-trip without loss.
type Election struct {
	ID        string
	Name      string
	Seats     int
	Method    string
	QuotaRule string
	Quota     string
	Elected   []string // in order of election
	CountedAt string   // RFC3339
}

// Round is one stored round of a count.
type Round struct {
	ID         string
	ElectionID string
	Number     int
	Elected    []string
	Eliminated []string
	Totals     []CandidateTotal
}

// CandidateTotal is a candidate's vote total at the start of a round.
type CandidateTotal struct {
	Candidate string
	Votes     string
}
