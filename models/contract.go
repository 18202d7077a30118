package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Contract struct {
	gorm.Model

	RoomID   uint `json:"room_id" gorm:"index;not null"`
	TenantID uint `json:"tenant_id" gorm:"index;not null"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	MonthlyRent    decimal.Decimal `json:"monthly_rent" gorm:"type:decimal(15,0);not null"`
	MonthlyRentVAT decimal.Decimal `json:"monthly_rent_vat" gorm:"column:monthly_rent_vat;type:decimal(15,0);not null"`
	Deposit        decimal.Decimal `json:"deposit" gorm:"type:decimal(15,0);not null"`
	ManagementFee  decimal.Decimal `json:"management_fee" gorm:"type:decimal(15,0);not null"`
	PaymentDay     int             `json:"payment_day" gorm:"default:1"`

	RentFreeStart *time.Time `json:"rent_free_start,omitempty"`
	RentFreeEnd   *time.Time `json:"rent_free_end,omitempty"`

	IsActive          bool            `json:"is_active" gorm:"index;default:true"`
	TerminatedAt      *time.Time      `json:"terminated_at,omitempty"`
	TerminationType   TerminationType `json:"termination_type,omitempty" gorm:"type:varchar(20)"`
	TerminationReason string          `json:"termination_reason,omitempty" gorm:"type:text"`
	DepositStatus     DepositStatus   `json:"deposit_status" gorm:"type:varchar(20);default:'보유'"`
	Memo              string          `json:"memo" gorm:"type:text"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID;references:ID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;references:ID"`
}

// Covers reports whether day falls inside the lease, both ends inclusive.
func (c Contract) Covers(day time.Time) bool {
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}

// RentFree reports whether day falls inside the rent-free window.
func (c Contract) RentFree(day time.Time) bool {
	if c.RentFreeStart == nil || c.RentFreeEnd == nil {
		return false
	}
	return !day.Before(*c.RentFreeStart) && !day.After(*c.RentFreeEnd)
}
