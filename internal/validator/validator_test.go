package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ministry/internal/validator"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email,no_disposable_email"`
	Password string `json:"password" validate:"required,password_strength"`
}

type markRequest struct {
	EventType   string `json:"event_type" validate:"required,event_type"`
	ServiceTime string `json:"service_time" validate:"service_time"`
	Status      string `json:"status" validate:"required,attendance_status"`
}

type eventRequest struct {
	Time string `json:"time" validate:"required,event_time"`
}

type payRequest struct {
	Method string `json:"payment_method" validate:"required,payment_method"`
}

func TestValidator_PasswordStrength(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name     string
		password string
		isValid  bool
	}{
		{"valid_password", "ValidPass123!", true},
		{"underscore_counts_as_symbol", "Valid_Pass123", true},
		{"too_short", "Short1!", false},
		{"no_uppercase", "nouppercase123!", false},
		{"no_lowercase", "NOLOWERCASE123!", false},
		{"no_digits", "NoDigitsHere!", false},
		{"no_special_chars", "NoSpecialChars123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(registerRequest{Name: "Fr. Tomas", Email: "tomas@parish.ph", Password: tt.password})
			if tt.isValid {
				assert.NoError(t, err, "Password should be valid: %s", tt.password)
			} else {
				assert.Error(t, err, "Password should be invalid: %s", tt.password)
			}
		})
	}
}

func TestValidator_DisposableEmail(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "user@example.com", true},
		{"gmail_email", "user@gmail.com", true},
		{"disposable_mailinator", "user@mailinator.com", false},
		{"disposable_uppercase", "user@YOPMAIL.com", false},
		{"invalid_email_format", "invalid-email", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(registerRequest{Name: "Ana", Email: tt.email, Password: "ValidPass123!"})
			if tt.isValid {
				assert.NoError(t, err, "Email should be valid: %s", tt.email)
			} else {
				assert.Error(t, err, "Email should be invalid: %s", tt.email)
			}
		})
	}
}

func TestValidator_MinistryRules(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		request any
		isValid bool
	}{
		{"sunday mass am present", markRequest{EventType: "SUNDAY_MASS", ServiceTime: "AM", Status: "PRESENT"}, true},
		{"meeting without service time", markRequest{EventType: "MONTHLY_MEETING", Status: "EXCUSED"}, true},
		{"unknown event type", markRequest{EventType: "PICNIC", Status: "PRESENT"}, false},
		{"unknown service time", markRequest{EventType: "DAILY_MASS", ServiceTime: "NOON", Status: "PRESENT"}, false},
		{"unknown status", markRequest{EventType: "DAILY_MASS", Status: "MAYBE"}, false},
		{"clock", eventRequest{Time: "19:30"}, true},
		{"clock midnight", eventRequest{Time: "00:00"}, true},
		{"clock hour out of range", eventRequest{Time: "24:00"}, false},
		{"clock twelve hour", eventRequest{Time: "7:30 PM"}, false},
		{"gcash", payRequest{Method: "GCASH"}, true},
		{"bitcoin", payRequest{Method: "BITCOIN"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.request)
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_MessagesUseJSONNames(t *testing.T) {
	v := validator.New()

	err := v.Validate(registerRequest{Email: "tomas@parish.ph", Password: "ValidPass123!"})
	assert.EqualError(t, err, "name is required")

	err = v.Validate(eventRequest{Time: "7pm"})
	assert.EqualError(t, err, "time must be HH:MM")
}
