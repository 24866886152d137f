package indexer

// ScanProgress describes one scan run. Values returned by the Indexer are
// snapshots and are never mutated afterwards.
type ScanProgress struct {
	// TotalFiles is 0 when unknown; it grows with each ingestion.
	TotalFiles     int64    `json:"totalFiles"`
	ProcessedFiles int64    `json:"processedFiles"`
	FoundFiles     int64    `json:"foundFiles"`
	CurrentFile    string   `json:"currentFile"`
	Errors         []string `json:"errors"`
}

func newScanProgress() *ScanProgress {
	return &ScanProgress{Errors: []string{}}
}

// snapshot returns a copy that shares no memory with p.
func (p *ScanProgress) snapshot() ScanProgress {
	s := *p
	s.Errors = append(make([]string, 0, len(p.Errors)), p.Errors...)
	return s
}
