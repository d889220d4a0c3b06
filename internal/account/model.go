package account

import "time"

// Account is a platform user able to authenticate and own resources
type Account struct {
	ID           int64      `json:"accountId"`
	Name         string     `json:"name"`
	Lastname     string     `json:"lastname"`
	PhoneNumber  string     `json:"phoneNumber"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	ResetToken   *string    `json:"-"`
	TokenExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
