package paymentoption

import (
	"time"
)

// OptionType is the closed set of payment method kinds. Anything else in the
// column is a data defect and is rejected by the dispatcher.
type OptionType string

const (
	TypeDirectDebit OptionType = "direct_debit"
	TypeCard        OptionType = "card"
	TypeWallet      OptionType = "wallet"
)

// UsesCardGateway reports whether the option is charged through the
// authorize+capture card gateway.
func (t OptionType) UsesCardGateway() bool {
	return t == TypeCard || t == TypeWallet
}

// PaymentOption is a user's configured payment method. At most one option per
// user is active at any time; the repository enforces that, this package
// consumes it as a precondition.
type PaymentOption struct {
	ID             int64      `gorm:"primaryKey"`
	UserID         int64      `gorm:"column:user_id;not null;index"`
	Type           OptionType `gorm:"column:option_type;not null"`
	LocationID     *int64     `gorm:"column:location_id"`
	ProviderUserID *string    `gorm:"column:provider_user_id"`
	GatewayToken   *string    `gorm:"column:gateway_token"`
	IsActive       bool       `gorm:"column:is_active;default:false"`
	RemovedAt      *time.Time `gorm:"column:removed_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;default:now()"`
}

func (PaymentOption) TableName() string {
	return "payment_options"
}
