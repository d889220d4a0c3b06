package evidence

// Evidence is a file or exhibit attached to a timeline event
type Evidence struct {
	ID           int64  `json:"evidenceId"`
	EventID      int64  `json:"eventId"`
	EvidenceType string `json:"evidenceType"`
	EvidenceName string `json:"evidenceName"`
	FilePath     string `json:"filePath"`
}
