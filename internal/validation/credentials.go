package validation

import (
	"fmt"
	"unicode"
)

// ValidatePassword checks that an admin password is long and mixes
// upper case, lower case, digits and symbols.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !lower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !digit:
		return fmt.Errorf("password must contain at least one digit")
	case !special:
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

type emailInput struct {
	Email string `validate:"required,email,max=254"`
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if err := instance().Struct(emailInput{Email: email}); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}
