package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"oreoffice-backend/models"
)

type TemplateService struct {
	DB *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{DB: db}
}

type TemplateInput struct {
	Name      *string `json:"name"`
	Content   *string `json:"content"`
	IsDefault *bool   `json:"is_default"`
}

func (s *TemplateService) List() ([]models.ContractTemplate, error) {
	var out []models.ContractTemplate
	if err := s.DB.Order("is_default DESC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out, nil
}

func (s *TemplateService) Get(id uint) (*models.ContractTemplate, error) {
	return findTemplate(s.DB, id)
}

func findTemplate(db *gorm.DB, id uint) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	if err := db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &t, nil
}

// defaultTemplate is the flagged default, or the oldest template.
func defaultTemplate(db *gorm.DB) (*models.ContractTemplate, error) {
	var t models.ContractTemplate
	err := db.Order("is_default DESC, id ASC").First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load default template: %w", err)
	}
	return &t, nil
}

func (s *TemplateService) Create(t *models.ContractTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return validationError("양식 이름은 필수입니다.")
	}
	if strings.TrimSpace(t.Content) == "" {
		return validationError("양식 내용은 필수입니다.")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if t.IsDefault {
			if err := clearDefault(tx); err != nil {
				return err
			}
		}
		return tx.Create(t).Error
	})
}

func (s *TemplateService) Update(id uint, in TemplateInput) (*models.ContractTemplate, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := findTemplate(tx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			t.Name = strings.TrimSpace(*in.Name)
			if t.Name == "" {
				return validationError("양식 이름은 필수입니다.")
			}
		}
		if in.Content != nil {
			if strings.TrimSpace(*in.Content) == "" {
				return validationError("양식 내용은 필수입니다.")
			}
			t.Content = *in.Content
		}
		if in.IsDefault != nil {
			if *in.IsDefault && !t.IsDefault {
				if err := clearDefault(tx); err != nil {
					return err
				}
			}
			t.IsDefault = *in.IsDefault
		}
		return tx.Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *TemplateService) Delete(id uint) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(t).Error
}

func clearDefault(tx *gorm.DB) error {
	return tx.Model(&models.ContractTemplate{}).Where("is_default = ?", true).Update("is_default", false).Error
}
