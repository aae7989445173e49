package models

// User represents a registered account. PasswordHash is empty for
// accounts created through OAuth.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
