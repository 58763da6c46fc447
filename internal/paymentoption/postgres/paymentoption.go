package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	paymentoptiondm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	paymentoptionpkg "github.com/frahmantamala/invoice-payments/internal/paymentoption"
)

type PaymentOptionRepository struct {
	db *gorm.DB
}

func NewPaymentOptionRepository(db *gorm.DB) paymentoptionpkg.RepositoryAPI {
	return &PaymentOptionRepository{
		db: db,
	}
}

func (r *PaymentOptionRepository) GetActive(userID int64) (*paymentoptiondm.PaymentOption, error) {
	var opt paymentoptiondm.PaymentOption
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).First(&opt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opt, nil
}

func (r *PaymentOptionRepository) GetAll(userID int64) ([]*paymentoptiondm.PaymentOption, error) {
	var options []*paymentoptiondm.PaymentOption
	err := r.db.Where("user_id = ? AND deleted_at IS NULL", userID).Order("created_at ASC").Find(&options).Error
	return options, err
}

func (r *PaymentOptionRepository) Delete(id int64, deletedAt, removedAt time.Time) error {
	return r.db.Model(&paymentoptiondm.PaymentOption{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": deletedAt,
		"removed_at": removedAt,
		"updated_at": time.Now(),
	}).Error
}

func (r *PaymentOptionRepository) SetRemovalTimestamp(id int64, removedAt time.Time) error {
	return r.db.Model(&paymentoptiondm.PaymentOption{}).Where("id = ?", id).Updates(map[string]interface{}{
		"removed_at": removedAt,
		"updated_at": time.Now(),
	}).Error
}
