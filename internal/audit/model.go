package audit

import "time"

// AuditoryLog records an action a user performed on a legal process
type AuditoryLog struct {
	ID        int64     `json:"auditoryLogId"`
	LogAction string    `json:"logAction"`
	LogTime   time.Time `json:"logTime"`
	AccountID int64     `json:"accountId"`
	ProcessID int64     `json:"processId"`
}
