package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ServiceType string

const (
	Delivery ServiceType = "entrega"
	Pickup   ServiceType = "retirada"
)

func (s ServiceType) Label() string {
	if s == Delivery {
		return "Entrega"
	}
	return "Retirada"
}

type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCash PaymentMethod = "dinheiro"
	PaymentCard PaymentMethod = "cartao"
)

var (
	ErrMissingRequired = errors.New("required fields missing")
	ErrMissingAddress  = errors.New("delivery address missing")
)

// ValidationError lists the offending fields. It unwraps to
// ErrMissingRequired or ErrMissingAddress.
type ValidationError struct {
	Err    error
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Form is what the shopper fills in on the checkout screen.
type Form struct {
	Name          string        `json:"name" validate:"required"`
	Phone         string        `json:"phone" validate:"required"`
	ServiceType   ServiceType   `json:"service_type" validate:"required,oneof=entrega retirada"`
	Address       string        `json:"address" validate:"required_if=ServiceType entrega"`
	Reference     string        `json:"reference"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=pix dinheiro cartao"`
	Change        string        `json:"change"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace from the free-text fields.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Reference = strings.TrimSpace(f.Reference)
	f.Change = strings.TrimSpace(f.Change)
	return f
}

// Validate checks required fields by presence. Missing general fields take
// precedence over a missing delivery address.
func (f Form) Validate() error {
	err := validate.Struct(f.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var required []string
	addressMissing := false
	for _, fe := range verrs {
		if fe.Field() == "Address" {
			addressMissing = true
			continue
		}
		required = append(required, fe.Field())
	}
	if len(required) > 0 {
		return &ValidationError{Err: ErrMissingRequired, Fields: required}
	}
	if addressMissing {
		return &ValidationError{Err: ErrMissingAddress, Fields: []string{"Address"}}
	}
	return err
}

// ChangeFor returns the change note when the payment is cash, empty otherwise.
func (f Form) ChangeFor() string {
	if f.PaymentMethod != PaymentCash {
		return ""
	}
	return f.Change
}
