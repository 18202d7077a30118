package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a ledger row of money that actually moved.
type Transaction struct {
	gorm.Model

	Type            TransactionType     `json:"type" gorm:"type:varchar(10);index;not null"`
	Category        TransactionCategory `json:"category" gorm:"type:varchar(20);index;not null"`
	Amount          decimal.Decimal     `json:"amount" gorm:"type:decimal(15,0);not null"`
	TransactionDate time.Time           `json:"transaction_date" gorm:"index;not null"`
	Description     string              `json:"description" gorm:"size:255"`
	PaymentMethod   string              `json:"payment_method" gorm:"size:50"`
	Memo            string              `json:"memo" gorm:"type:text"`

	ContractID *uint `json:"contract_id,omitempty" gorm:"index"`
	RoomID     *uint `json:"room_id,omitempty" gorm:"index"`
	TenantID   *uint `json:"tenant_id,omitempty" gorm:"index"`
	BillingID  *uint `json:"billing_id,omitempty" gorm:"index"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID;references:ID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;references:ID"`
}
