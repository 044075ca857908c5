package account

import "time"

// User is one registered account as persisted in the index.
type User struct {
	UserID           string     `json:"user_id"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Nickname         string     `json:"nickname"`
	PasswordHash     string     `json:"password_hash"`
	RegistrationDate time.Time  `json:"registration_date"`
	IsActive         bool       `json:"is_active"`
	LastLogin        *time.Time `json:"last_login"`
}

// RegisterInput carries the four registration fields.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	Nickname string
}

// Stats summarizes the index.
type Stats struct {
	TotalUsers      int    `json:"total_users"`
	ActiveUsers     int    `json:"active_users"`
	StorageLocation string `json:"storage_location"`
}
