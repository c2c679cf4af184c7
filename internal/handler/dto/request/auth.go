package request

import (
	"strings"

	"giftcode-market/internal/domain/user"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) ToDomain() (user.Email, string, error) {
	email, err := user.NewEmail(strings.TrimSpace(r.Email))
	if err != nil {
		return "", "", err
	}
	return email, r.Password, nil
}
