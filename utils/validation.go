package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError is returned by services when user input is rejected
// before any write happens.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	hhmmPattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	digitPattern = regexp.MustCompile(`^[0-9]+$`)

	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the domain tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		RegisterValidators(validate)
	})
	return validate
}

// RegisterValidators adds the domain tags (rut, clphone, pin, slug, hhmm,
// isodate, yearmonth) to v.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidateRut(s)
	})
	_ = v.RegisterValidation("clphone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return ValidatePin(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidateSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return ValidateTimeOfDay(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return ValidateDate(fl.Field().String())
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return ValidateMonth(fl.Field().String())
	})
}

// RegisterBindingValidators hooks the domain tags into gin's request binding.
func RegisterBindingValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// NormalizeRut strips dots, dashes and spaces and upper-cases the check digit.
func NormalizeRut(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(rut))
}

// ValidateRut checks a Chilean RUT with the modulo 11 algorithm.
// "12.345.678-5", "12345678-5" and "123456785" are the same RUT.
func ValidateRut(rut string) bool {
	clean := NormalizeRut(rut)
	if len(clean) < 2 {
		return false
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	if !digitPattern.MatchString(body) {
		return false
	}

	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	var expected string
	switch r := 11 - sum%11; r {
	case 11:
		expected = "0"
	case 10:
		expected = "K"
	default:
		expected = strconv.Itoa(r)
	}
	return dv == expected
}

// ValidateEmail accepts an empty address; the field is optional.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return true
	}
	return Validator().Var(email, "email") == nil
}

// NormalizePhone drops the separators people type between digits.
func NormalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(phone)
}

// ValidatePhone requires a 9 digit mobile number, without country code.
func ValidatePhone(phone string) bool {
	p := NormalizePhone(phone)
	return len(p) == 9 && digitPattern.MatchString(p)
}

func ValidatePin(pin string) bool {
	return len(pin) >= 4 && len(pin) <= 8 && digitPattern.MatchString(pin)
}

func ValidateSlug(slug string) bool {
	return len(slug) >= 3 && slugPattern.MatchString(slug)
}

func ValidateTimeOfDay(s string) bool {
	return hhmmPattern.MatchString(s)
}

func ValidateDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func ValidateMonth(s string) bool {
	if len(s) != len(MonthLayout) {
		return false
	}
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}
