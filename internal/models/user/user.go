package user

import "time"

// User is immutable after signup. Password and salt never leave the server.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	Salt         string    `json:"-" db:"salt"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
