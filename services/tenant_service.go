package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"oreoffice-backend/models"
)

type TenantService struct {
	DB *gorm.DB
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{DB: db}
}

type TenantInput struct {
	CompanyName        *string            `json:"company_name"`
	RepresentativeName *string            `json:"representative_name"`
	BusinessNumber     *string            `json:"business_number"`
	Phone              *string            `json:"phone"`
	Email              *string            `json:"email"`
	Address            *string            `json:"address"`
	TenantType         *models.TenantType `json:"tenant_type"`
	Memo               *string            `json:"memo"`
}

// List searches company, representative and business number with q.
func (s *TenantService) List(q string, tenantType models.TenantType) ([]models.Tenant, error) {
	query := s.DB.Model(&models.Tenant{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(company_name) LIKE ? OR LOWER(representative_name) LIKE ? OR business_number LIKE ?",
			like, like, like,
		)
	}
	if tenantType != "" {
		query = query.Where("tenant_type = ?", tenantType)
	}
	var tenants []models.Tenant
	if err := query.Order("company_name ASC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// Get returns the tenant with its contract history, newest first.
func (s *TenantService) Get(id uint) (*models.Tenant, error) {
	var t models.Tenant
	err := s.DB.
		Preload("Contracts", func(db *gorm.DB) *gorm.DB { return db.Order("start_date DESC") }).
		Preload("Contracts.Room").
		First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	return &t, nil
}

func (s *TenantService) Create(t *models.Tenant) error {
	t.CompanyName = strings.TrimSpace(t.CompanyName)
	if t.CompanyName == "" {
		return validationError("회사명은 필수입니다.")
	}
	if t.TenantType == "" {
		t.TenantType = models.TenantResident
	}
	if !t.TenantType.Valid() {
		return validationError("알 수 없는 입주 유형입니다.")
	}
	t.BusinessNumber = normalizeBusinessNumber(t.BusinessNumber)
	if err := s.DB.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (s *TenantService) Update(id uint, in TenantInput) (*models.Tenant, error) {
	updates := map[string]interface{}{}
	if in.CompanyName != nil {
		name := strings.TrimSpace(*in.CompanyName)
		if name == "" {
			return nil, validationError("회사명은 필수입니다.")
		}
		updates["company_name"] = name
	}
	if in.RepresentativeName != nil {
		updates["representative_name"] = strings.TrimSpace(*in.RepresentativeName)
	}
	if in.BusinessNumber != nil {
		updates["business_number"] = normalizeBusinessNumber(*in.BusinessNumber)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		updates["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.TenantType != nil {
		if !in.TenantType.Valid() {
			return nil, validationError("알 수 없는 입주 유형입니다.")
		}
		updates["tenant_type"] = *in.TenantType
	}
	if in.Memo != nil {
		updates["memo"] = *in.Memo
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&models.Tenant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update tenant: %w", err)
		}
	}
	return s.Get(id)
}

func (s *TenantService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	var active int64
	if err := s.DB.Model(&models.Contract{}).Where("tenant_id = ? AND is_active = ?", id, true).Count(&active).Error; err != nil {
		return fmt.Errorf("failed to check contracts: %w", err)
	}
	if active > 0 {
		return ErrTenantHasContract
	}
	return s.DB.Delete(&models.Tenant{}, id).Error
}

// normalizeBusinessNumber formats 10 digits as 000-00-00000 and leaves
// anything else untouched.
func normalizeBusinessNumber(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(digits) != 10 {
		return strings.TrimSpace(raw)
	}
	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
}
