package implementation

import (
	"context"
	"errors"

	"notesheet/internal/model"
	"notesheet/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresSnapshotRepository struct {
	db *gorm.DB
}

func NewPostgresSnapshotRepository(db *gorm.DB) contract.SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var m model.KeyValue
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(m.Value), nil
}

// Put upserts the row; the previous value is replaced, never merged.
func (r *PostgresSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	m := model.KeyValue{
		Key:   key,
		Value: datatypes.JSON(value),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&m).Error
}
