package advice

// LegalAdvice is a short legal tip published for clients
type LegalAdvice struct {
	ID      int64  `json:"adviceId"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}
