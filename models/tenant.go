package models

import (
	"gorm.io/gorm"
)

type Tenant struct {
	gorm.Model

	CompanyName        string     `json:"company_name" gorm:"size:255;index"`
	RepresentativeName string     `json:"representative_name" gorm:"size:100"`
	BusinessNumber     string     `json:"business_number" gorm:"size:20;index"`
	Phone              string     `json:"phone" gorm:"size:50"`
	Email              string     `json:"email" gorm:"size:150"`
	Address            string     `json:"address" gorm:"type:text"`
	TenantType         TenantType `json:"tenant_type" gorm:"type:varchar(20);default:'입주'"`
	Memo               string     `json:"memo" gorm:"type:text"`

	Contracts []Contract `json:"contracts,omitempty" gorm:"foreignKey:TenantID"`
}
