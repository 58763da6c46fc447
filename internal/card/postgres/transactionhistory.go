package postgres

import (
	"gorm.io/gorm"

	cardpkg "github.com/frahmantamala/invoice-payments/internal/card"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/transactionhistory"
)

type TransactionHistoryRepository struct {
	db *gorm.DB
}

func NewTransactionHistoryRepository(db *gorm.DB) cardpkg.HistoryRepository {
	return &TransactionHistoryRepository{
		db: db,
	}
}

func (r *TransactionHistoryRepository) Insert(record *transactionhistory.Record) error {
	return r.db.Create(record).Error
}
