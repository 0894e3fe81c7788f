package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseRecordModel is embedded by append-only records. Rows are never updated,
// so there is no UpdatedAt or soft delete column.
type BaseRecordModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (m *BaseRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID != uuid.Nil {
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}
