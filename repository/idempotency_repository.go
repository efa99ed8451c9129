package repository

import (
	"context"
	"errors"

	"payment-service/models"

	"gorm.io/gorm"
)

// ErrDuplicateKey is returned by Put when a record for the key already
// exists. The caller decides whether to read the winner's record back.
var ErrDuplicateKey = errors.New("idempotency key already exists")

// IdempotencyRepository maps client-supplied idempotency keys to the
// response that was originally computed for them. Put is atomic: the
// primary-key constraint on key guarantees at most one writer wins.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	Put(ctx context.Context, record *models.IdempotencyRecord) error
}

type gormIdempotencyRepo struct {
	db *gorm.DB
}

func NewGormIdempotencyRepo(db *gorm.DB) IdempotencyRepository {
	return &gormIdempotencyRepo{db: db}
}

// Get returns (nil, nil) when no record exists for the key.
func (r *gormIdempotencyRepo) Get(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormIdempotencyRepo) Put(ctx context.Context, record *models.IdempotencyRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}
