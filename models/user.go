package models

import "time"

// User is the directory minimum this service reads: identity plus the
// address notifications go to. Account management lives elsewhere.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
