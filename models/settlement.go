package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Settlement is the monthly rollup. Once confirmed the month is locked.
type Settlement struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	YearMonth string `json:"year_month" gorm:"column:period;type:varchar(7);uniqueIndex;not null"`

	TotalIncome     decimal.Decimal `json:"total_income" gorm:"type:decimal(15,0)"`
	TotalExpense    decimal.Decimal `json:"total_expense" gorm:"type:decimal(15,0)"`
	NetProfit       decimal.Decimal `json:"net_profit" gorm:"type:decimal(15,0)"`
	BilledAmount    decimal.Decimal `json:"billed_amount" gorm:"type:decimal(15,0)"`
	CollectedAmount decimal.Decimal `json:"collected_amount" gorm:"type:decimal(15,0)"`

	TotalRooms    int     `json:"total_rooms"`
	OccupiedRooms int     `json:"occupied_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`

	// category -> amount, for both income and expense
	Breakdown datatypes.JSON `json:"breakdown"`

	IsConfirmed bool       `json:"is_confirmed" gorm:"default:false;index"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy *uint      `json:"confirmed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
