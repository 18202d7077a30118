package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Billing is one month of rent owed under a contract.
type Billing struct {
	gorm.Model

	ContractID uint   `json:"contract_id" gorm:"not null;uniqueIndex:idx_billing_contract_month"`
	YearMonth  string `json:"year_month" gorm:"column:period;type:varchar(7);not null;uniqueIndex:idx_billing_contract_month;index"`
	RoomID     uint   `json:"room_id" gorm:"index"`
	TenantID   uint   `json:"tenant_id" gorm:"index"`

	Amount  decimal.Decimal `json:"amount" gorm:"type:decimal(15,0);not null"`
	DueDate time.Time       `json:"due_date" gorm:"index"`
	Status  BillingStatus   `json:"status" gorm:"type:varchar(10);index;default:'대기'"`

	PaidAt        *time.Time       `json:"paid_at,omitempty"`
	PaidAmount    *decimal.Decimal `json:"paid_amount,omitempty" gorm:"type:decimal(15,0)"`
	PaymentMethod string           `json:"payment_method,omitempty" gorm:"size:50"`
	TransactionID *uint            `json:"transaction_id,omitempty" gorm:"index"`

	TaxInvoiceIssued   bool       `json:"tax_invoice_issued" gorm:"default:false"`
	TaxInvoiceNumber   string     `json:"tax_invoice_number,omitempty" gorm:"size:50"`
	TaxInvoiceIssuedAt *time.Time `json:"tax_invoice_issued_at,omitempty"`

	Memo string `json:"memo" gorm:"type:text"`

	Contract *Contract `json:"contract,omitempty" gorm:"foreignKey:ContractID;references:ID"`
	Room     *Room     `json:"room,omitempty" gorm:"foreignKey:RoomID;references:ID"`
	Tenant   *Tenant   `json:"tenant,omitempty" gorm:"foreignKey:TenantID;references:ID"`
}
