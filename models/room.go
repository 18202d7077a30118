package models

import (
	"time"

	"gorm.io/gorm"
)

type Room struct {
	gorm.Model

	RoomNumber string     `json:"room_number" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	RoomType   RoomType   `json:"room_type" gorm:"column:room_type;type:varchar(20);index"`
	Status     RoomStatus `json:"status" gorm:"column:status;type:varchar(20);index;default:'공실'"`
	Floor      string     `json:"floor" gorm:"type:varchar(10)"`
	Area       float64    `json:"area"`
	Capacity   int        `json:"capacity"`
	Memo       string     `json:"memo" gorm:"type:text"`

	// floor-plan card geometry
	PositionX float64 `json:"position_x" gorm:"column:position_x"`
	PositionY float64 `json:"position_y" gorm:"column:position_y"`
	Width     float64 `json:"width" gorm:"default:120"`
	Height    float64 `json:"height" gorm:"default:80"`

	// kept after the contract ends so the card can still show who was there
	LastCompanyName string     `json:"last_company_name" gorm:"column:last_company_name;size:255"`
	ContractEndedAt *time.Time `json:"contract_ended_at,omitempty" gorm:"column:contract_ended_at"`

	ActiveContract *Contract `json:"active_contract,omitempty" gorm:"-"`
}
