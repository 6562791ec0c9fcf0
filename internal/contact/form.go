package contact

import (
	"strings"

	"github.com/cobaemon/portfolio/pkg/email"
)

const maxFullNameLength = 100

// Form carries one contact submission.
type Form struct {
	FullName    string
	Email       string
	PhoneNumber string
	Message     string
}

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

// Validate checks the submission and returns per-field messages. Every field
// is required; the phone number must be digits only.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(f.FullName)
	switch {
	case name == "":
		errs["full_name"] = "Full name is required."
	case len(name) > maxFullNameLength:
		errs["full_name"] = "Full name must be 100 characters or fewer."
	}

	if !email.IsValidAddress(strings.TrimSpace(f.Email)) {
		errs["email"] = "Enter a valid email address."
	}

	switch phone := strings.TrimSpace(f.PhoneNumber); {
	case phone == "":
		errs["phone_number"] = "Phone number is required."
	case !digitsOnly(phone):
		errs["phone_number"] = "Phone number must contain digits only."
	}

	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "Message is required."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
