package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordDTO for password change requests
type ChangePasswordDTO struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}

// Validate for password change DTO
func (d ChangePasswordDTO) Validate() error {
	if d.OldPassword == "" {
		return ValidationError{Msg: "old_password is required"}
	}
	if len(d.NewPassword) < 6 {
		return ValidationError{Msg: "new_password must be at least 6 characters"}
	}
	return nil
}
