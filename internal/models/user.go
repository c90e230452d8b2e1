package models

type User struct {
	UserID       string `json:"user"`
	PasswordHash string `json:"-"`
}

type CredentialsRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}
