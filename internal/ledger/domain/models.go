package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the canonical payment status in the local ledger.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
)

// PaymentRecord is a single reconciled payment in the local ledger.
// (provider, external_id) identifies the record; the external id is the
// provider's transaction identifier and never changes once set.
type PaymentRecord struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	Provider   string          `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_payment_records_provider_external,priority:1"`
	ExternalID string          `json:"external_id" gorm:"type:text;not null;uniqueIndex:ux_payment_records_provider_external,priority:2"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	Currency   string          `json:"currency" gorm:"type:text;not null"`
	Status     Status          `json:"status" gorm:"type:text;not null"`
	Metadata   datatypes.JSON  `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"not null"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

var (
	ErrInvalidProvider   = errors.New("invalid_provider")
	ErrInvalidExternalID = errors.New("invalid_external_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrNotFound          = errors.New("not_found")
)
