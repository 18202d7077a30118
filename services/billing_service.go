package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

type BillingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db, Now: time.Now}
}

type BillingFilter struct {
	YearMonth  string
	Status     models.BillingStatus
	ContractID uint
	RoomID     uint
	TenantID   uint
}

type GenerateResult struct {
	YearMonth string           `json:"year_month"`
	Created   int              `json:"created"`
	Skipped   int              `json:"skipped"`
	Billings  []models.Billing `json:"billings"`
}

type PaymentInput struct {
	PaidAt        time.Time
	PaidAmount    *decimal.Decimal
	PaymentMethod string
	Memo          string
}

type TaxInvoiceInput struct {
	Number   string
	IssuedAt *time.Time
}

type BillingUpdate struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
	Memo    *string
}

// BulkItemResult is the outcome of one id in a bulk request.
type BulkItemResult struct {
	ID      uint   `json:"id"`
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

func (s *BillingService) today() time.Time {
	return utils.TruncateDay(s.Now())
}

func (s *BillingService) List(f BillingFilter) ([]models.Billing, error) {
	q := s.DB.Model(&models.Billing{}).Preload("Room").Preload("Tenant")
	if f.YearMonth != "" {
		q = q.Where("period = ?", f.YearMonth)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
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
	var out []models.Billing
	if err := q.Order("period DESC, due_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return out, nil
}

func (s *BillingService) Get(id uint) (*models.Billing, error) {
	var b models.Billing
	if err := s.DB.Preload("Contract").Preload("Room").Preload("Tenant").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingNotFound
		}
		return nil, fmt.Errorf("failed to load billing: %w", err)
	}
	return &b, nil
}

// outstanding is what an open billing still expects after earlier credits.
func outstanding(b *models.Billing) decimal.Decimal {
	if b.PaidAmount == nil || !b.Status.Open() {
		return b.Amount
	}
	return b.Amount.Sub(*b.PaidAmount)
}

func lockBilling(tx *gorm.DB, id uint) (*models.Billing, error) {
	var b models.Billing
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Generate creates the month's billings for every active contract. Running it
// twice for the same month creates nothing new.
func (s *BillingService) Generate(yearMonth string) (*GenerateResult, error) {
	month, err := utils.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, validationError("청구 월은 YYYY-MM 형식이어야 합니다.")
	}
	ym := utils.YearMonthOf(month)
	result := &GenerateResult{YearMonth: ym, Billings: []models.Billing{}}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var contracts []models.Contract
		if err := tx.Where("is_active = ?", true).Order("id ASC").Find(&contracts).Error; err != nil {
			return fmt.Errorf("failed to load contracts: %w", err)
		}

		var existing []uint
		if err := tx.Model(&models.Billing{}).Where("period = ?", ym).Pluck("contract_id", &existing).Error; err != nil {
			return err
		}
		billed := make(map[uint]bool, len(existing))
		for _, id := range existing {
			billed[id] = true
		}

		for _, c := range contracts {
			due := utils.DueDateIn(month, c.PaymentDay)
			if !c.Covers(due) || c.RentFree(due) || billed[c.ID] {
				result.Skipped++
				continue
			}
			b := models.Billing{
				ContractID: c.ID,
				YearMonth:  ym,
				RoomID:     c.RoomID,
				TenantID:   c.TenantID,
				Amount:     c.MonthlyRentVAT.Add(c.ManagementFee),
				DueDate:    due,
				Status:     models.BillingPending,
			}
			if err := tx.Create(&b).Error; err != nil {
				if utils.IsDuplicateKey(err) {
					result.Skipped++
					continue
				}
				return fmt.Errorf("failed to create billing for contract %d: %w", c.ID, err)
			}
			result.Created++
			result.Billings = append(result.Billings, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("billings generated",
		zap.String("year_month", ym),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *BillingService) Update(id uint, in BillingUpdate) (*models.Billing, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := lockBilling(tx, id)
		if err != nil {
			return err
		}
		switch b.Status {
		case models.BillingPaid:
			return ErrBillingPaid
		case models.BillingCancelled:
			return ErrBillingCancelled
		}
		updates := map[string]interface{}{}
		if in.Amount != nil {
			if !in.Amount.IsPositive() {
				return validationError("청구 금액은 0보다 커야 합니다.")
			}
			updates["amount"] = *in.Amount
		}
		if in.DueDate != nil {
			due := utils.TruncateDay(*in.DueDate)
			updates["due_date"] = due
			status := models.BillingPending
			if due.Before(s.today()) {
				status = models.BillingOverdue
			}
			updates["status"] = status
		}
		if in.Memo != nil {
			updates["memo"] = *in.Memo
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(b).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel voids an unpaid billing.
func (s *BillingService) Cancel(id uint) (*models.Billing, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := lockBilling(tx, id)
		if err != nil {
			return err
		}
		switch b.Status {
		case models.BillingPaid:
			return ErrBillingPaid
		case models.BillingCancelled:
			return ErrBillingCancelled
		}
		return tx.Model(b).Update("status", models.BillingCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// ConfirmPayment records the rent income for a billing and marks it paid.
func (s *BillingService) ConfirmPayment(id uint, in PaymentInput) (*models.Billing, error) {
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.confirmPayment(tx, id, in)
	}); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *BillingService) confirmPayment(tx *gorm.DB, id uint, in PaymentInput) error {
	b, err := lockBilling(tx, id)
	if err != nil {
		return err
	}
	switch b.Status {
	case models.BillingPaid:
		return ErrBillingPaid
	case models.BillingCancelled:
		return ErrBillingCancelled
	}

	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = s.today()
	}
	paidAt = utils.TruncateDay(paidAt)
	credited := b.Amount.Sub(outstanding(b))
	amount := outstanding(b)
	if in.PaidAmount != nil {
		if !in.PaidAmount.IsPositive() {
			return validationError("입금 금액은 0보다 커야 합니다.")
		}
		amount = *in.PaidAmount
	}
	method := in.PaymentMethod
	if method == "" {
		method = "계좌이체"
	}
	if err := ensureUnlocked(tx, paidAt); err != nil {
		return err
	}

	var tenant models.Tenant
	var room models.Room
	tx.Select("company_name").First(&tenant, b.TenantID)
	tx.Select("room_number").First(&room, b.RoomID)

	t := models.Transaction{
		Type:            models.TxIncome,
		Category:        models.CategoryRent,
		Amount:          amount,
		TransactionDate: paidAt,
		Description:     fmt.Sprintf("%s %s호 %s 월세", tenant.CompanyName, room.RoomNumber, b.YearMonth),
		PaymentMethod:   method,
		Memo:            in.Memo,
		ContractID:      uintPtr(b.ContractID),
		RoomID:          nonZero(b.RoomID),
		TenantID:        nonZero(b.TenantID),
		BillingID:       uintPtr(b.ID),
	}
	if err := tx.Create(&t).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return tx.Model(b).Updates(map[string]interface{}{
		"status":         models.BillingPaid,
		"paid_at":        paidAt,
		"paid_amount":    credited.Add(amount),
		"payment_method": method,
		"transaction_id": t.ID,
	}).Error
}

// CancelPayment reverts a confirmed payment and deletes its transaction.
func (s *BillingService) CancelPayment(id uint) (*models.Billing, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := lockBilling(tx, id)
		if err != nil {
			return err
		}
		if b.Status != models.BillingPaid {
			return ErrBillingNotPaid
		}

		if b.TransactionID != nil {
			var t models.Transaction
			err := tx.First(&t, *b.TransactionID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
			case err != nil:
				return err
			default:
				if err := ensureUnlocked(tx, t.TransactionDate); err != nil {
					return err
				}
				if err := tx.Delete(&t).Error; err != nil {
					return fmt.Errorf("failed to delete payment transaction: %w", err)
				}
			}
		}

		// a deposit offset credited before the payment stays on the billing
		var credit struct{ Total decimal.Decimal }
		if err := tx.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0) AS total").
			Where("billing_id = ?", b.ID).
			Scan(&credit).Error; err != nil {
			return err
		}
		var paidAmount interface{}
		if credit.Total.IsPositive() {
			paidAmount = credit.Total
		}

		status := models.BillingPending
		if b.DueDate.Before(s.today()) {
			status = models.BillingOverdue
		}
		return tx.Model(b).Updates(map[string]interface{}{
			"status":         status,
			"paid_at":        nil,
			"paid_amount":    paidAmount,
			"payment_method": "",
			"transaction_id": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *BillingService) IssueTaxInvoice(id uint, in TaxInvoiceInput) (*models.Billing, error) {
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.issueTaxInvoice(tx, id, in)
	}); err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *BillingService) issueTaxInvoice(tx *gorm.DB, id uint, in TaxInvoiceInput) error {
	b, err := lockBilling(tx, id)
	if err != nil {
		return err
	}
	if b.Status == models.BillingCancelled {
		return ErrBillingCancelled
	}
	if b.TaxInvoiceIssued {
		return ErrTaxInvoiceIssued
	}
	issuedAt := s.today()
	if in.IssuedAt != nil {
		issuedAt = utils.TruncateDay(*in.IssuedAt)
	}
	return tx.Model(b).Updates(map[string]interface{}{
		"tax_invoice_issued":    true,
		"tax_invoice_number":    in.Number,
		"tax_invoice_issued_at": issuedAt,
	}).Error
}

// BulkConfirmPayment confirms each id in its own transaction.
func (s *BillingService) BulkConfirmPayment(ids []uint, in PaymentInput) *BulkResult {
	// a shared paid amount makes no sense across billings
	in.PaidAmount = nil
	return s.bulk(ids, func(tx *gorm.DB, id uint) error {
		return s.confirmPayment(tx, id, in)
	})
}

func (s *BillingService) BulkIssueTaxInvoice(ids []uint, issuedAt *time.Time) *BulkResult {
	return s.bulk(ids, func(tx *gorm.DB, id uint) error {
		return s.issueTaxInvoice(tx, id, TaxInvoiceInput{IssuedAt: issuedAt})
	})
}

func (s *BillingService) bulk(ids []uint, fn func(tx *gorm.DB, id uint) error) *BulkResult {
	out := &BulkResult{Results: make([]BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		err := s.DB.Transaction(func(tx *gorm.DB) error { return fn(tx, id) })
		if err == nil {
			out.Succeeded++
			out.Results = append(out.Results, BulkItemResult{ID: id, Success: true})
			continue
		}
		out.Failed++
		item := BulkItemResult{ID: id, Code: "error.internal", Message: err.Error()}
		var de *Error
		if errors.As(err, &de) {
			item.Code = de.Code
			item.Message = de.Message
		} else {
			zap.L().Error("bulk billing operation failed", zap.Uint("billing_id", id), zap.Error(err))
		}
		out.Results = append(out.Results, item)
	}
	return out
}

// RefreshOverdue flips pending billings whose due date has passed to overdue.
func (s *BillingService) RefreshOverdue(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Billing{}).
		Where("status = ? AND due_date < ?", models.BillingPending, utils.TruncateDay(now)).
		Update("status", models.BillingOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to refresh overdue billings: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		zap.L().Info("billings marked overdue", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// Delete removes an unpaid billing for good so the month can be generated again.
func (s *BillingService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := lockBilling(tx, id)
		if err != nil {
			return err
		}
		if b.Status == models.BillingPaid {
			return ErrBillingPaid
		}
		return tx.Unscoped().Delete(b).Error
	})
}
