package event

import "time"

// Event is a dated entry on a process timeline
type Event struct {
	ID          int64      `json:"eventId"`
	ProcessID   int64      `json:"processId"`
	OrderIndex  int        `json:"orderIndex"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DateStart   time.Time  `json:"dateStart"`
	DateEnd     *time.Time `json:"dateEnd"`
}
