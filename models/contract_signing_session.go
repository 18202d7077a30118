package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContractSigningSession struct {
	gorm.Model

	ContractID uint          `json:"contract_id" gorm:"index;not null"`
	TemplateID uint          `json:"template_id" gorm:"index"`
	Token      string        `json:"token" gorm:"uniqueIndex;size:64"`
	Status     SigningStatus `json:"status" gorm:"type:varchar(20);index;default:'pending_tenant'"`

	RenderedContent string `json:"rendered_content" gorm:"type:text"`

	TenantSignerName string     `json:"tenant_signer_name,omitempty" gorm:"size:100"`
	TenantSignature  string     `json:"tenant_signature,omitempty"`
	TenantSignedAt   *time.Time `json:"tenant_signed_at,omitempty"`
	TenantIP         string     `json:"tenant_ip,omitempty" gorm:"size:64"`

	AdminSignature string     `json:"admin_signature,omitempty"`
	AdminSignerID  *uint      `json:"admin_signer_id,omitempty"`
	AdminSignedAt  *time.Time `json:"admin_signed_at,omitempty"`

	DocumentPath string     `json:"document_path,omitempty" gorm:"size:255"`
	SentTo       string     `json:"sent_to,omitempty" gorm:"size:150"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	History datatypes.JSON `json:"history"`

	Contract *Contract `json:"contract,omitempty" gorm:"foreignKey:ContractID;references:ID"`
}

// SigningEvent is one entry of ContractSigningSession.History.
type SigningEvent struct {
	From SigningStatus `json:"from"`
	To   SigningStatus `json:"to"`
	At   time.Time     `json:"at"`
	By   string        `json:"by,omitempty"`
}
