package observation

// Observation is a free-form note attached to a timeline event
type Observation struct {
	ID      int64  `json:"observationId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	EventID int64  `json:"eventId"`
}
