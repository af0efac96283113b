package business

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ValidationError captures a single invalid field on an entity.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

func (errs ValidationErrors) orNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the client's required fields.
func (c Client) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	switch c.Type {
	case ClientAcademic, ClientCommercial, ClientGovernment:
	default:
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid type %q (expected academic, commercial, or government)", c.Type),
		})
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			errs = append(errs, ValidationError{Field: "email", Message: "must be a valid email address"})
		}
	}
	return errs.orNil()
}

// Validate checks the contract's required fields.
func (c Contract) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.ClientID) == "" {
		errs = append(errs, ValidationError{Field: "client_id", Message: "client_id is required"})
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	}
	if c.Value.IsNegative() {
		errs = append(errs, ValidationError{Field: "value", Message: "cannot be negative"})
	}
	switch c.Status {
	case "", ContractDraft, ContractActive, ContractCompleted, ContractCancelled:
	default:
		errs = append(errs, ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", c.Status)})
	}
	errs = append(errs, validateDate("start_date", c.StartDate)...)
	errs = append(errs, validateDate("end_date", c.EndDate)...)
	if c.StartDate != "" && c.EndDate != "" && c.EndDate < c.StartDate {
		errs = append(errs, ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	return errs.orNil()
}

// Validate checks the payment's required fields.
func (p Payment) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(p.ContractID) == "" {
		errs = append(errs, ValidationError{Field: "contract_id", Message: "contract_id is required"})
	}
	if !p.Amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Message: "must be positive"})
	}
	switch p.Status {
	case "", PaymentPending, PaymentPaid, PaymentOverdue:
	default:
		errs = append(errs, ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", p.Status)})
	}
	errs = append(errs, validateDate("due_date", p.DueDate)...)
	return errs.orNil()
}

func validateDate(field, value string) ValidationErrors {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return ValidationErrors{{Field: field, Message: "must be a YYYY-MM-DD date"}}
	}
	return nil
}
