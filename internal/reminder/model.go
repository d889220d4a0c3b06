package reminder

import "time"

// Reminder is a scheduled notification ahead of an appointment
type Reminder struct {
	ID            int64     `json:"reminderId"`
	Title         string    `json:"title"`
	DateTime      time.Time `json:"dateTime"`
	ActiveFlag    bool      `json:"activeFlag"`
	AppointmentID int64     `json:"appointmentId"`
}

// AppointmentInfo is the appointment view the reminder flow needs
type AppointmentInfo struct {
	ID          int64
	Type        string
	Date        time.Time
	Description string
	ContactInfo string
	AccountID   int64
}
