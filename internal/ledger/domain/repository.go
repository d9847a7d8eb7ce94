package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	FindByExternalID(ctx context.Context, db *gorm.DB, provider, externalID string) (*PaymentRecord, error)
	Insert(ctx context.Context, db *gorm.DB, record *PaymentRecord) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, metadata datatypes.JSON, updatedAt time.Time) error
}
