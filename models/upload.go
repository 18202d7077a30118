package models

import "time"

type Upload struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"size:50;index" json:"category"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	StoredName   string    `gorm:"size:255;uniqueIndex" json:"stored_name"`
	MimeType     string    `gorm:"size:100" json:"mime_type"`
	Size         int64     `json:"size"`
	ContractID   *uint     `gorm:"index" json:"contract_id,omitempty"`
	TenantID     *uint     `gorm:"index" json:"tenant_id,omitempty"`
	RoomID       *uint     `gorm:"index" json:"room_id,omitempty"`
	UploadedBy   *uint     `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
