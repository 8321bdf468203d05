package api

// User is the public view of an account.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	DefaultCurrency string `json:"default_currency"`
	CreatedAt       int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	// Pin is a 4 to 6 digit numeric credential.
	Pin             string `json:"pin"`
	DefaultCurrency string `json:"default_currency,omitempty"`
}

type RegisterResponse struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	PersonalGroupID string `json:"personal_group_id"`
}

type LoginRequest struct {
	Email string `json:"email"`
	Pin   string `json:"pin"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
