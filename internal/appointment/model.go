package appointment

import "time"

// Appointment is a dated engagement belonging to an account
type Appointment struct {
	ID          int64     `json:"appointmentId"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contactInfo"`
	AccountID   int64     `json:"accountId"`
}
