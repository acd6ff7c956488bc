// internal/auth/service.go
//
// The account backend is an external capability: sign in, create an
// account, and write the producer profile document. Screens talk to it only
// through Service.

package auth

import (
	"context"
	"time"
)

// Session is the result of a successful sign in or account creation.
type Session struct {
	UserID   string
	Email    string
	IssuedAt time.Time
}

// PropertyType is the kind of rural property a producer registers.
type PropertyType string

const (
	// PropertyFamily is a family farmer identified by an individual
	// taxpayer number.
	PropertyFamily PropertyType = "CPF"
	// PropertyCompany is a rural producer registered as a company.
	PropertyCompany PropertyType = "PJ"
)

// DocumentLimit is the maximum formatted length of the property document.
func (p PropertyType) DocumentLimit() int {
	if p == PropertyCompany {
		return 18
	}
	return 14
}

// DocumentLabel is the form label for the property document.
func (p PropertyType) DocumentLabel() string {
	if p == PropertyCompany {
		return "CNPJ da Propriedade"
	}
	return "CPF do Produtor"
}

// DocumentPlaceholder shows the expected document format.
func (p PropertyType) DocumentPlaceholder() string {
	if p == PropertyCompany {
		return "00.000.000/0000-00"
	}
	return "000.000.000-00"
}

// Profile is the producer document stored under users/{uid}.
type Profile struct {
	Name        string       `json:"name"`
	Age         int          `json:"age"`
	Type        PropertyType `json:"type"`
	Document    string       `json:"document"`
	Hectares    float64      `json:"hectares"`
	Email       string       `json:"email"`
	CreatedAt   time.Time    `json:"createdAt"`
	ProfileIcon string       `json:"profileIcon"`
}

// DefaultProfileIcon is assigned to every new profile.
const DefaultProfileIcon = "👨‍🌾"

// Service is the account backend. Every method returns an *Error on
// failure.
type Service interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	CreateAccount(ctx context.Context, email, password string) (Session, error)
	WriteProfile(ctx context.Context, userID string, profile Profile) error
}
