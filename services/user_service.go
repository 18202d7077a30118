package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     models.UserRole
}

type UserInput struct {
	Name     *string          `json:"name"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}

const minPasswordLen = 8

func (s *UserService) List() ([]models.User, error) {
	var out []models.User
	if err := s.DB.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *UserService) Create(in CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("올바른 이메일을 입력하세요.")
	}
	if len(in.Password) < minPasswordLen {
		return nil, validationError("비밀번호는 8자 이상이어야 합니다.")
	}
	if in.Role == "" {
		in.Role = models.RoleViewer
	}
	if !in.Role.Valid() {
		return nil, validationError("권한은 admin 또는 viewer여야 합니다.")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		Password: hash,
		Role:     in.Role,
		IsActive: true,
	}
	if err := s.DB.Create(u).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) Update(id uint, in UserInput) (*models.User, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Password != nil {
			if len(*in.Password) < minPasswordLen {
				return validationError("비밀번호는 8자 이상이어야 합니다.")
			}
			hash, err := HashPassword(*in.Password)
			if err != nil {
				return err
			}
			updates["password"] = hash
		}
		demoted := in.Role != nil && *in.Role != models.RoleAdmin
		deactivated := in.IsActive != nil && !*in.IsActive
		if in.Role != nil {
			if !in.Role.Valid() {
				return validationError("권한은 admin 또는 viewer여야 합니다.")
			}
			updates["role"] = *in.Role
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if u.Role == models.RoleAdmin && u.IsActive && (demoted || deactivated) {
			if err := ensureOtherAdmin(tx, u.ID); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&u).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *UserService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.Role == models.RoleAdmin && u.IsActive {
			if err := ensureOtherAdmin(tx, u.ID); err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&u).Error
	})
}

// ensureOtherAdmin fails when id is the only active admin.
func ensureOtherAdmin(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id <> ?", models.RoleAdmin, true, id).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrLastAdmin
	}
	return nil
}
