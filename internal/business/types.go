// Package business defines the lab's contract-side entities stored in records.Store.
package business

import (
	"github.com/shopspring/decimal"

	"labdesk/internal/records"
)

// ClientType classifies who the lab is producing plants for.
type ClientType string

const (
	ClientAcademic   ClientType = "academic"
	ClientCommercial ClientType = "commercial"
	ClientGovernment ClientType = "government"
)

// ContractStatus tracks a contract through its lifecycle.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

// PaymentStatus tracks whether an invoice has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// Client is an organization the lab propagates plants for.
type Client struct {
	records.Meta `yaml:",inline"`
	Name         string     `json:"name" yaml:"name"`
	Organization string     `json:"organization,omitempty" yaml:"organization,omitempty"`
	Email        string     `json:"email,omitempty" yaml:"email,omitempty"`
	Phone        string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Type         ClientType `json:"type" yaml:"type"`
}

// Contract is a production agreement with a client.
type Contract struct {
	records.Meta `yaml:",inline"`
	ClientID     string          `json:"client_id" yaml:"client_id"`
	Title        string          `json:"title" yaml:"title"`
	Value        decimal.Decimal `json:"value" yaml:"value"`
	StartDate    string          `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate      string          `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Status       ContractStatus  `json:"status" yaml:"status"`
}

// Payment is an invoice raised against a contract.
type Payment struct {
	records.Meta `yaml:",inline"`
	ContractID   string          `json:"contract_id" yaml:"contract_id"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	DueDate      string          `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Method       string          `json:"method,omitempty" yaml:"method,omitempty"`
	Status       PaymentStatus   `json:"status" yaml:"status"`
}
