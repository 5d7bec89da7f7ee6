package domain

// User is a registered or guest identity. Guests have no PasswordHash.
type User struct {
	Id           string
	Username     string
	PasswordHash string
}
