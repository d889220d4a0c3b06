package process

import "time"

// StatusNotStarted is the initial status of a legal process
const StatusNotStarted = "not started"

// Process is a legal case tracked by the platform
type Process struct {
	ID                 int64      `json:"processId"`
	Title              string     `json:"title"`
	Offense            string     `json:"offense"`
	Canton             string     `json:"canton"`
	Province           string     `json:"province"`
	ClientGender       string     `json:"clientGender"`
	ClientAge          *int       `json:"clientAge"`
	AccountID          int64      `json:"accountId"`
	ProcessStatus      string     `json:"processStatus"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	LastUpdate         *time.Time `json:"lastUpdate"`
	ProcessNumber      string     `json:"processNumber"`
	ProcessType        string     `json:"processType"`
	ProcessDescription string     `json:"processDescription"`
}

// SummaryEvent is the trimmed event view returned by the summary
type SummaryEvent struct {
	Name      string     `json:"name"`
	DateStart time.Time  `json:"dateStart"`
	DateEnd   *time.Time `json:"dateEnd"`
}

// Summary describes the lifetime of a started process
type Summary struct {
	ProcessTitle string         `json:"processTitle"`
	DateStart    time.Time      `json:"dateStart"`
	LastUpdate   time.Time      `json:"lastUpdate"`
	ElapsedTime  ElapsedTime    `json:"elapsedTime"`
	EventsList   []SummaryEvent `json:"eventsList"`
}
