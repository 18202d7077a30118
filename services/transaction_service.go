package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"oreoffice-backend/models"
)

type TransactionService struct {
	DB *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{DB: db}
}

type TransactionFilter struct {
	Type       models.TransactionType
	Category   models.TransactionCategory
	From       *time.Time
	To         *time.Time // inclusive day
	ContractID uint
	RoomID     uint
	TenantID   uint
}

type TransactionInput struct {
	Type            *models.TransactionType     `json:"type"`
	Category        *models.TransactionCategory `json:"category"`
	Amount          *decimal.Decimal            `json:"amount"`
	TransactionDate *time.Time                  `json:"-"`
	Description     *string                     `json:"description"`
	PaymentMethod   *string                     `json:"payment_method"`
	Memo            *string                     `json:"memo"`
	ContractID      *uint                       `json:"contract_id"`
	RoomID          *uint                       `json:"room_id"`
	TenantID        *uint                       `json:"tenant_id"`
}

type CategoryTotal struct {
	Type     models.TransactionType     `json:"type"`
	Category models.TransactionCategory `json:"category"`
	Total    decimal.Decimal            `json:"total"`
	Count    int64                      `json:"count"`
}

type TransactionSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Categories   []CategoryTotal `json:"categories"`
}

func applyTransactionFilter(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("transaction_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("transaction_date < ?", f.To.AddDate(0, 0, 1))
	}
	if f.ContractID > 0 {
		q = q.Where("contract_id = ?", f.ContractID)
	}
	if f.RoomID > 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.TenantID > 0 {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	return q
}

func (s *TransactionService) List(f TransactionFilter) ([]models.Transaction, error) {
	var out []models.Transaction
	q := applyTransactionFilter(s.DB.Model(&models.Transaction{}), f)
	if err := q.Preload("Room").Preload("Tenant").
		Order("transaction_date DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

func (s *TransactionService) Get(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.DB.Preload("Room").Preload("Tenant").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTxNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &t, nil
}

func validateTransaction(t *models.Transaction) error {
	if !t.Type.Valid() {
		return validationError("거래 구분은 수입 또는 지출이어야 합니다.")
	}
	if !t.Category.BelongsTo(t.Type) {
		return validationError(fmt.Sprintf("'%s' 항목은 %s 거래에 사용할 수 없습니다.", t.Category, t.Type))
	}
	if !t.Amount.IsPositive() {
		return validationError("금액은 0보다 커야 합니다.")
	}
	if t.TransactionDate.IsZero() {
		return validationError("거래일은 필수입니다.")
	}
	return nil
}

// Create records a manual ledger entry (one-time meeting room use, utilities, ...).
func (s *TransactionService) Create(t *models.Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if err := validateTransaction(t); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureUnlocked(tx, t.TransactionDate); err != nil {
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
}

func (s *TransactionService) Update(id uint, in TransactionInput) (*models.Transaction, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTxNotFound
			}
			return err
		}
		if t.BillingID != nil {
			return ErrTxLinkedToBilling
		}
		oldDate := t.TransactionDate

		if in.Type != nil {
			t.Type = *in.Type
		}
		if in.Category != nil {
			t.Category = *in.Category
		}
		if in.Amount != nil {
			t.Amount = *in.Amount
		}
		if in.TransactionDate != nil {
			t.TransactionDate = *in.TransactionDate
		}
		if in.Description != nil {
			t.Description = strings.TrimSpace(*in.Description)
		}
		if in.PaymentMethod != nil {
			t.PaymentMethod = *in.PaymentMethod
		}
		if in.Memo != nil {
			t.Memo = *in.Memo
		}
		if in.ContractID != nil {
			t.ContractID = nonZero(*in.ContractID)
		}
		if in.RoomID != nil {
			t.RoomID = nonZero(*in.RoomID)
		}
		if in.TenantID != nil {
			t.TenantID = nonZero(*in.TenantID)
		}
		if err := validateTransaction(&t); err != nil {
			return err
		}
		if err := ensureUnlocked(tx, oldDate, t.TransactionDate); err != nil {
			return err
		}
		t.Room, t.Tenant = nil, nil
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *TransactionService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTxNotFound
			}
			return err
		}
		if t.BillingID != nil {
			return ErrTxLinkedToBilling
		}
		if err := ensureUnlocked(tx, t.TransactionDate); err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
}

// Summary totals the filtered transactions per type and category.
func (s *TransactionService) Summary(f TransactionFilter) (*TransactionSummary, error) {
	var rows []CategoryTotal
	q := applyTransactionFilter(s.DB.Model(&models.Transaction{}), f)
	if err := q.Select("type, category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type, category").
		Order("type, category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarise transactions: %w", err)
	}

	sum := &TransactionSummary{Categories: rows}
	for _, r := range rows {
		if r.Type == models.TxIncome {
			sum.TotalIncome = sum.TotalIncome.Add(r.Total)
		} else {
			sum.TotalExpense = sum.TotalExpense.Add(r.Total)
		}
	}
	sum.Net = sum.TotalIncome.Sub(sum.TotalExpense)
	if sum.Categories == nil {
		sum.Categories = []CategoryTotal{}
	}
	return sum, nil
}

func nonZero(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func uintPtr(id uint) *uint { return &id }
