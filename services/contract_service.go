package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

// vatRate is the Korean VAT applied to the monthly rent.
var vatRate = decimal.NewFromFloat(0.1)

type ContractService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{DB: db, Now: time.Now}
}

type ContractFilter struct {
	Active   *bool
	RoomID   uint
	TenantID uint
}

type CreateContractInput struct {
	RoomID            uint
	TenantID          uint
	StartDate         time.Time
	EndDate           time.Time
	MonthlyRent       decimal.Decimal
	MonthlyRentVAT    *decimal.Decimal
	Deposit           decimal.Decimal
	ManagementFee     decimal.Decimal
	PaymentDay        int
	RentFreeStart     *time.Time
	RentFreeEnd       *time.Time
	Memo              string
	DepositReceived   bool
	DepositReceivedAt *time.Time
}

type UpdateContractInput struct {
	EndDate        *time.Time
	MonthlyRent    *decimal.Decimal
	MonthlyRentVAT *decimal.Decimal
	Deposit        *decimal.Decimal
	ManagementFee  *decimal.Decimal
	PaymentDay     *int
	RentFreeStart  *time.Time
	RentFreeEnd    *time.Time
	ClearRentFree  bool
	Memo           *string
}

type TerminateInput struct {
	Type         models.TerminationType
	TerminatedAt time.Time
	Reason       string
}

// TerminationResult reports every row the termination touched.
type TerminationResult struct {
	Contract          *models.Contract    `json:"contract"`
	Transaction       *models.Transaction `json:"transaction,omitempty"`
	OffsetBilling     *models.Billing     `json:"offset_billing,omitempty"`
	CancelledBillings int64               `json:"cancelled_billings"`
}

// WithVAT returns rent plus VAT rounded to the won.
func WithVAT(rent decimal.Decimal) decimal.Decimal {
	return rent.Add(rent.Mul(vatRate)).Round(0)
}

func (s *ContractService) today() time.Time {
	return utils.TruncateDay(s.Now())
}

func (s *ContractService) List(f ContractFilter) ([]models.Contract, error) {
	q := s.DB.Model(&models.Contract{}).Preload("Room").Preload("Tenant")
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.RoomID > 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.TenantID > 0 {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	var out []models.Contract
	if err := q.Order("start_date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return out, nil
}

func (s *ContractService) Get(id uint) (*models.Contract, error) {
	return loadContract(s.DB, id)
}

func loadContract(db *gorm.DB, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := db.Preload("Room").Preload("Tenant").First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	return &c, nil
}

// Expiring lists active contracts ending within the next days days.
func (s *ContractService) Expiring(days int) ([]models.Contract, error) {
	if days <= 0 {
		days = 30
	}
	today := s.today()
	var out []models.Contract
	if err := s.DB.Preload("Room").Preload("Tenant").
		Where("is_active = ? AND end_date >= ? AND end_date < ?", true, today, today.AddDate(0, 0, days+1)).
		Order("end_date ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list expiring contracts: %w", err)
	}
	return out, nil
}

func validateTerms(start, end time.Time, rent, deposit, fee decimal.Decimal, paymentDay int, freeStart, freeEnd *time.Time) error {
	if start.IsZero() || end.IsZero() {
		return validationError("계약 시작일과 종료일은 필수입니다.")
	}
	if end.Before(start) {
		return validationError("계약 종료일은 시작일 이후여야 합니다.")
	}
	if rent.IsNegative() || deposit.IsNegative() || fee.IsNegative() {
		return validationError("금액은 음수일 수 없습니다.")
	}
	if paymentDay < 1 || paymentDay > 31 {
		return validationError("납부일은 1일에서 31일 사이여야 합니다.")
	}
	if (freeStart == nil) != (freeEnd == nil) {
		return validationError("렌트프리 기간은 시작일과 종료일을 모두 입력해야 합니다.")
	}
	if freeStart != nil && freeEnd.Before(*freeStart) {
		return validationError("렌트프리 종료일은 시작일 이후여야 합니다.")
	}
	return nil
}

// Create opens a lease on a room. A room holds at most one active contract.
func (s *ContractService) Create(in CreateContractInput) (*models.Contract, error) {
	if in.PaymentDay == 0 {
		in.PaymentDay = 1
	}
	if err := validateTerms(in.StartDate, in.EndDate, in.MonthlyRent, in.Deposit, in.ManagementFee,
		in.PaymentDay, in.RentFreeStart, in.RentFreeEnd); err != nil {
		return nil, err
	}
	rentVAT := WithVAT(in.MonthlyRent)
	if in.MonthlyRentVAT != nil {
		if in.MonthlyRentVAT.IsNegative() {
			return nil, validationError("금액은 음수일 수 없습니다.")
		}
		rentVAT = *in.MonthlyRentVAT
	}

	var contract models.Contract
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		var tenant models.Tenant
		if err := tx.First(&tenant, in.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTenantNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&models.Contract{}).Where("room_id = ? AND is_active = ?", room.ID, true).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrRoomHasActiveContract
		}

		contract = models.Contract{
			RoomID:         room.ID,
			TenantID:       tenant.ID,
			StartDate:      in.StartDate,
			EndDate:        in.EndDate,
			MonthlyRent:    in.MonthlyRent,
			MonthlyRentVAT: rentVAT,
			Deposit:        in.Deposit,
			ManagementFee:  in.ManagementFee,
			PaymentDay:     in.PaymentDay,
			RentFreeStart:  in.RentFreeStart,
			RentFreeEnd:    in.RentFreeEnd,
			IsActive:       true,
			DepositStatus:  models.DepositHeld,
			Memo:           in.Memo,
		}
		if err := tx.Create(&contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		status := models.RoomOccupied
		if in.StartDate.After(s.today()) {
			status = models.RoomReserved
		}
		if err := tx.Model(&room).Updates(map[string]interface{}{
			"status":            status,
			"last_company_name": "",
			"contract_ended_at": nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to update room status: %w", err)
		}

		if in.DepositReceived && in.Deposit.IsPositive() {
			day := in.StartDate
			if in.DepositReceivedAt != nil {
				day = *in.DepositReceivedAt
			}
			if err := ensureUnlocked(tx, day); err != nil {
				return err
			}
			deposit := models.Transaction{
				Type:            models.TxIncome,
				Category:        models.CategoryDepositIn,
				Amount:          in.Deposit,
				TransactionDate: day,
				Description:     fmt.Sprintf("%s %s호 보증금 입금", tenant.CompanyName, room.RoomNumber),
				ContractID:      uintPtr(contract.ID),
				RoomID:          uintPtr(room.ID),
				TenantID:        uintPtr(tenant.ID),
			}
			if err := tx.Create(&deposit).Error; err != nil {
				return fmt.Errorf("failed to record deposit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("contract created", zap.Uint("contract_id", contract.ID), zap.Uint("room_id", contract.RoomID))
	return s.Get(contract.ID)
}

func (s *ContractService) Update(id uint, in UpdateContractInput) (*models.Contract, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if !c.IsActive {
			return ErrContractInactive
		}

		if in.EndDate != nil {
			c.EndDate = *in.EndDate
		}
		if in.MonthlyRent != nil {
			c.MonthlyRent = *in.MonthlyRent
			c.MonthlyRentVAT = WithVAT(c.MonthlyRent)
		}
		if in.MonthlyRentVAT != nil {
			c.MonthlyRentVAT = *in.MonthlyRentVAT
		}
		if in.Deposit != nil {
			c.Deposit = *in.Deposit
		}
		if in.ManagementFee != nil {
			c.ManagementFee = *in.ManagementFee
		}
		if in.PaymentDay != nil {
			c.PaymentDay = *in.PaymentDay
		}
		if in.ClearRentFree {
			c.RentFreeStart, c.RentFreeEnd = nil, nil
		} else if in.RentFreeStart != nil || in.RentFreeEnd != nil {
			c.RentFreeStart, c.RentFreeEnd = in.RentFreeStart, in.RentFreeEnd
		}
		if in.Memo != nil {
			c.Memo = *in.Memo
		}
		if c.MonthlyRentVAT.IsNegative() {
			return validationError("금액은 음수일 수 없습니다.")
		}
		if err := validateTerms(c.StartDate, c.EndDate, c.MonthlyRent, c.Deposit, c.ManagementFee,
			c.PaymentDay, c.RentFreeStart, c.RentFreeEnd); err != nil {
			return err
		}
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a terminated contract together with its unpaid billings.
func (s *ContractService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if c.IsActive {
			return ErrContractActive
		}
		var paid int64
		if err := tx.Model(&models.Billing{}).Where("contract_id = ? AND status = ?", id, models.BillingPaid).Count(&paid).Error; err != nil {
			return err
		}
		if paid > 0 {
			return ErrContractHasPayments
		}
		if err := tx.Unscoped().Where("contract_id = ?", id).Delete(&models.Billing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}

// Terminate ends an active contract and converts its deposit:
// 중도종료 books the deposit as penalty income, 만기종료 books it as a rent
// offset that settles the final month's billing. The room keeps the last
// tenant's name for display.
func (s *ContractService) Terminate(id uint, in TerminateInput) (*TerminationResult, error) {
	if !in.Type.Valid() {
		return nil, validationError("종료 유형은 중도종료 또는 만기종료여야 합니다.")
	}
	if in.TerminatedAt.IsZero() {
		in.TerminatedAt = s.today()
	}
	day := utils.TruncateDay(in.TerminatedAt)

	result := &TerminationResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Tenant").Preload("Room").First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if !c.IsActive {
			return ErrContractInactive
		}
		if day.Before(c.StartDate) {
			return validationError("종료일은 계약 시작일 이후여야 합니다.")
		}
		if err := ensureUnlocked(tx, day); err != nil {
			return err
		}

		companyName := ""
		if c.Tenant != nil {
			companyName = c.Tenant.CompanyName
		}
		roomNumber := ""
		if c.Room != nil {
			roomNumber = c.Room.RoomNumber
		}

		category, depositStatus := depositConversion(in.Type)

		if c.Deposit.IsPositive() {
			t := models.Transaction{
				Type:            models.TxIncome,
				Category:        category,
				Amount:          c.Deposit,
				TransactionDate: day,
				Description:     fmt.Sprintf("%s %s호 %s (보증금 %s)", companyName, roomNumber, in.Type, category),
				ContractID:      uintPtr(c.ID),
				RoomID:          uintPtr(c.RoomID),
				TenantID:        uintPtr(c.TenantID),
			}
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("failed to record deposit conversion: %w", err)
			}
			result.Transaction = &t

			if in.Type == models.TerminationExpiry {
				offset, err := settleFinalBilling(tx, &c, &t, day)
				if err != nil {
					return err
				}
				result.OffsetBilling = offset
			}
		}

		// billings for months after the termination month are void
		res := tx.Model(&models.Billing{}).
			Where("contract_id = ? AND period > ? AND status IN ?", c.ID, utils.YearMonthOf(day),
				[]models.BillingStatus{models.BillingPending, models.BillingOverdue}).
			Update("status", models.BillingCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel future billings: %w", res.Error)
		}
		result.CancelledBillings = res.RowsAffected

		if err := tx.Model(&models.Contract{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
			"is_active":          false,
			"terminated_at":      day,
			"termination_type":   in.Type,
			"termination_reason": in.Reason,
			"deposit_status":     depositStatus,
		}).Error; err != nil {
			return fmt.Errorf("failed to close contract: %w", err)
		}

		if err := tx.Model(&models.Room{}).Where("id = ?", c.RoomID).Updates(map[string]interface{}{
			"status":            models.RoomContractEnded,
			"last_company_name": companyName,
			"contract_ended_at": day,
		}).Error; err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	contract, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	result.Contract = contract
	zap.L().Info("contract terminated",
		zap.Uint("contract_id", id),
		zap.String("type", string(in.Type)),
		zap.String("deposit", contract.Deposit.String()))
	return result, nil
}

// depositConversion is the termination-type lookup for what the deposit becomes.
func depositConversion(t models.TerminationType) (models.TransactionCategory, models.DepositStatus) {
	if t == models.TerminationEarly {
		return models.CategoryPenalty, models.DepositToPenalty
	}
	return models.CategoryRentOffset, models.DepositToRentOffset
}

// settleFinalBilling applies the deposit offset to the open billing of the
// termination month. A deposit that covers the billing pays it; a smaller one
// is credited and the billing stays open for the rest. It returns nil when
// there is nothing to settle.
func settleFinalBilling(tx *gorm.DB, c *models.Contract, offset *models.Transaction, day time.Time) (*models.Billing, error) {
	var b models.Billing
	err := tx.Where("contract_id = ? AND period = ? AND status IN ?", c.ID, utils.YearMonthOf(day),
		[]models.BillingStatus{models.BillingPending, models.BillingOverdue}).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load final billing: %w", err)
	}

	credited := b.Amount.Sub(outstanding(&b))
	updates := map[string]interface{}{
		"status":         models.BillingPaid,
		"paid_at":        day,
		"paid_amount":    b.Amount,
		"payment_method": string(models.CategoryRentOffset),
		"transaction_id": offset.ID,
	}
	if credited.Add(c.Deposit).LessThan(b.Amount) {
		updates = map[string]interface{}{
			"paid_amount": credited.Add(c.Deposit),
			"memo":        strings.TrimSpace(b.Memo + fmt.Sprintf(" 보증금 상계 %s원", FormatWon(c.Deposit))),
		}
	}
	if err := tx.Model(&b).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to settle final billing: %w", err)
	}
	if err := tx.Model(offset).Update("billing_id", b.ID).Error; err != nil {
		return nil, err
	}
	offset.BillingID = uintPtr(b.ID)
	if err := tx.First(&b, b.ID).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
