package auth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultMinPasswordLength matches the backend's weak password threshold.
const DefaultMinPasswordLength = 6

// FormError is a validation failure caught before any backend call.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	if e.Field == "" {
		return "auth: form: " + e.Message
	}
	return fmt.Sprintf("auth: form: %s: %s", e.Field, e.Message)
}

func asFormError(err error) (*FormError, bool) {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// LoginForm is the raw input of the login screen.
type LoginForm struct {
	Email    string
	Password string
}

// Validate requires both fields.
func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return &FormError{Message: MsgLoginMissingFields}
	}
	return nil
}

// RegistrationForm is the raw input of the registration screen. Numeric
// fields stay strings until ToProfile parses them.
type RegistrationForm struct {
	Name     string
	Age      string
	Type     PropertyType
	Document string
	Hectares string
	Email    string
	Password string
}

// Validate checks the form. minPassword <= 0 selects
// DefaultMinPasswordLength.
func (f RegistrationForm) Validate(minPassword int) error {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	required := []string{f.Name, f.Age, string(f.Type), f.Document, f.Hectares, f.Email, f.Password}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return &FormError{Message: MsgRegisterMissingFields}
		}
	}
	if len([]rune(f.Password)) < minPassword {
		return &FormError{Field: "password", Message: fmt.Sprintf(MsgRegisterWeakPassword, minPassword)}
	}
	if f.Type != PropertyFamily && f.Type != PropertyCompany {
		return &FormError{Field: "type", Message: "Selecione o tipo de propriedade."}
	}
	if _, err := f.age(); err != nil {
		return &FormError{Field: "age", Message: "Idade deve ser um número entre 0 e 120."}
	}
	if _, err := f.hectares(); err != nil {
		return &FormError{Field: "hectares", Message: "Hectares deve ser um número positivo."}
	}
	if n := len([]rune(strings.TrimSpace(f.Document))); n > f.Type.DocumentLimit() {
		return &FormError{Field: "document", Message: fmt.Sprintf("%s deve ter no máximo %d caracteres.", f.Type.DocumentLabel(), f.Type.DocumentLimit())}
	}
	return nil
}

// ToProfile parses the form into the profile document. It assumes Validate
// has passed.
func (f RegistrationForm) ToProfile(now time.Time) (Profile, error) {
	age, err := f.age()
	if err != nil {
		return Profile{}, err
	}
	hectares, err := f.hectares()
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Name:        strings.TrimSpace(f.Name),
		Age:         age,
		Type:        f.Type,
		Document:    strings.TrimSpace(f.Document),
		Hectares:    hectares,
		Email:       strings.TrimSpace(f.Email),
		CreatedAt:   now.UTC(),
		ProfileIcon: DefaultProfileIcon,
	}, nil
}

func (f RegistrationForm) age() (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		return 0, fmt.Errorf("auth: parse age: %w", err)
	}
	if age < 0 || age > 120 {
		return 0, fmt.Errorf("auth: age %d out of range", age)
	}
	return age, nil
}

func (f RegistrationForm) hectares() (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(f.Hectares), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: parse hectares: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("auth: hectares %q is not a number", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("auth: hectares %v is negative", v)
	}
	return v, nil
}
