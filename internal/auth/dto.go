package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			fields := make([]string, len(invalid))
			for i, fe := range invalid {
				fields[i] = fe.Field()
			}
			return ValidationError{Msg: strings.Join(fields, ", ") + " required"}
		}
		return ValidationError{Msg: "data invalid"}
	}
	return nil
}

func (d LoginDTO) Validate() error {
	return validateStruct(d)
}

func (d RefreshTokenDTO) Validate() error {
	return validateStruct(d)
}

// AuthTokens is the login and refresh response body.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
