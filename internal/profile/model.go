package profile

// UserProfile is the public face of an account
type UserProfile struct {
	ID             int64  `json:"profileId"`
	Title          string `json:"title"`
	Bio            string `json:"bio"`
	Address        string `json:"address"`
	ProfilePicture string `json:"profilePicture"`
	AccountID      int64  `json:"accountId"`
}

// Qualification is a professional credential attached to a profile
type Qualification struct {
	ID                int64  `json:"qualificationId"`
	Role              string `json:"role"`
	Institution       string `json:"institution"`
	Place             string `json:"place"`
	StartYear         int    `json:"startYear"`
	EndYear           int    `json:"endYear"`
	QualificationType string `json:"qualificationType"`
	ProfileID         int64  `json:"profileId"`
}
