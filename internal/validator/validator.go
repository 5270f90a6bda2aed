package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"ministry/internal/model"
)

var disposableEmailDomains = []string{
	"10minutemail.com", "guerrillamail.com", "mailinator.com", "tempmail.org",
	"yopmail.com", "maildrop.cc", "temp-mail.org", "throwaway.email",
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-]`)
	clockRe   = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Custom validators
	_ = v.RegisterValidation("password_strength", validatePasswordStrength)
	_ = v.RegisterValidation("no_disposable_email", validateNoDisposableEmail)
	_ = v.RegisterValidation("attendance_status", validateAttendanceStatus)
	_ = v.RegisterValidation("event_type", validateEventType)
	_ = v.RegisterValidation("service_time", validateServiceTime)
	_ = v.RegisterValidation("event_time", validateEventTime)
	_ = v.RegisterValidation("payment_method", validatePaymentMethod)

	return &Validator{validate: v}
}

// Validate checks the struct and flattens any failures into one readable error.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min", "max", "gte", "lte", "gt", "lt":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "password_strength":
		return fmt.Sprintf("%s must have 8+ characters with upper and lower case letters, a digit and a symbol", fe.Field())
	case "event_time":
		return fmt.Sprintf("%s must be HH:MM", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	// At least 8 characters
	if len(password) < 8 {
		return false
	}

	return upperRe.MatchString(password) && lowerRe.MatchString(password) &&
		digitRe.MatchString(password) && specialRe.MatchString(password)
}

func validateNoDisposableEmail(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	emailParts := strings.Split(email, "@")
	if len(emailParts) != 2 {
		return false
	}

	domain := strings.ToLower(emailParts[1])
	for _, disposableDomain := range disposableEmailDomains {
		if domain == disposableDomain {
			return false
		}
	}

	return true
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	switch model.AttendanceStatus(fl.Field().String()) {
	case model.AttendanceStatusPresent, model.AttendanceStatusAbsent,
		model.AttendanceStatusLate, model.AttendanceStatusExcused:
		return true
	}
	return false
}

func validateEventType(fl validator.FieldLevel) bool {
	return model.EventType(fl.Field().String()).Valid()
}

// empty is allowed; non-mass occasions have no service time
func validateServiceTime(fl validator.FieldLevel) bool {
	switch model.ServiceTime(fl.Field().String()) {
	case model.ServiceTimeNone, model.ServiceTimeAM, model.ServiceTimePM:
		return true
	}
	return false
}

func validateEventTime(fl validator.FieldLevel) bool {
	return clockRe.MatchString(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch model.PaymentMethod(fl.Field().String()) {
	case model.PaymentMethodCash, model.PaymentMethodBankTransfer, model.PaymentMethodGCash,
		model.PaymentMethodPayMaya, model.PaymentMethodCheck, model.PaymentMethodCard:
		return true
	}
	return false
}
