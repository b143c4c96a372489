package models

// User is the account returned by the auth service.
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginResponse mirrors the auth service's response envelope.
type LoginResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *LoginData `json:"data,omitempty"`
}
