package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paysync/internal/ledger/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, provider, externalID string) (*domain.PaymentRecord, error) {
	var record domain.PaymentRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, external_id, amount, currency, status, metadata, created_at, updated_at
		 FROM payment_records
		 WHERE provider = ? AND external_id = ?
		 LIMIT 1`,
		provider,
		externalID,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.PaymentRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_records (id, provider, external_id, amount, currency, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Provider,
		record.ExternalID,
		record.Amount,
		record.Currency,
		record.Status,
		record.Metadata,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, metadata datatypes.JSON, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_records
		 SET status = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		metadata,
		updatedAt,
		id,
	).Error
}
