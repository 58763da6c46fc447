package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/execution"
	directdebitpkg "github.com/frahmantamala/invoice-payments/internal/directdebit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) directdebitpkg.AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) InsertExecution(record *execution.Record) error {
	return r.db.Create(record).Error
}

func (r *AuditRepository) InsertProviderResponse(resp *execution.ProviderResponse) error {
	return r.db.Create(resp).Error
}
