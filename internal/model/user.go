package model

// User is a registered account. Username is the primary key.
type User struct {
	Username     string
	PasswordHash string
}
