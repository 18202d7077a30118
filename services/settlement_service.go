package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

type SettlementService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db, Now: time.Now}
}

// SettlementBreakdown is the shape stored in Settlement.Breakdown.
type SettlementBreakdown struct {
	Income  map[models.TransactionCategory]decimal.Decimal `json:"income"`
	Expense map[models.TransactionCategory]decimal.Decimal `json:"expense"`
}

// periodLocked reports whether day falls in a confirmed settlement month.
func periodLocked(db *gorm.DB, day time.Time) (bool, error) {
	var n int64
	err := db.Model(&models.Settlement{}).
		Where("period = ? AND is_confirmed = ?", utils.YearMonthOf(day), true).
		Count(&n).Error
	return n > 0, err
}

// ensureUnlocked fails with ErrPeriodIsLocked when any of days is in a locked month.
func ensureUnlocked(db *gorm.DB, days ...time.Time) error {
	for _, d := range days {
		locked, err := periodLocked(db, d)
		if err != nil {
			return fmt.Errorf("failed to check settlement lock: %w", err)
		}
		if locked {
			return ErrPeriodIsLocked
		}
	}
	return nil
}

func (s *SettlementService) IsLocked(day time.Time) (bool, error) {
	return periodLocked(s.DB, day)
}

func (s *SettlementService) List(year int) ([]models.Settlement, error) {
	q := s.DB.Model(&models.Settlement{})
	if year > 0 {
		q = q.Where("period LIKE ?", fmt.Sprintf("%04d-%%", year))
	}
	var out []models.Settlement
	if err := q.Order("period DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return out, nil
}

func (s *SettlementService) GetByYearMonth(ym string) (*models.Settlement, error) {
	if _, err := utils.ParseYearMonth(ym); err != nil {
		return nil, validationError("정산월은 YYYY-MM 형식이어야 합니다.")
	}
	var st models.Settlement
	if err := s.DB.Where("period = ?", ym).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementMissing
		}
		return nil, fmt.Errorf("failed to load settlement: %w", err)
	}
	return &st, nil
}

// Generate computes the month's snapshot and stores it, replacing an earlier
// unconfirmed one.
func (s *SettlementService) Generate(ym string) (*models.Settlement, error) {
	monthStart, err := utils.ParseYearMonth(ym)
	if err != nil {
		return nil, validationError("정산월은 YYYY-MM 형식이어야 합니다.")
	}
	start, end := utils.MonthRange(monthStart)

	var out models.Settlement
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Settlement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("period = ?", ym).First(&existing).Error
		switch {
		case err == nil:
			if existing.IsConfirmed {
				return ErrSettlementConfirmed
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		snap, err := computeSnapshot(tx, start, end)
		if err != nil {
			return err
		}
		snap.ID = existing.ID
		snap.YearMonth = ym
		snap.CreatedAt = existing.CreatedAt
		if err := tx.Save(snap).Error; err != nil {
			return fmt.Errorf("failed to save settlement: %w", err)
		}
		out = *snap
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("settlement generated", zap.String("year_month", ym), zap.String("net", out.NetProfit.String()))
	return &out, nil
}

func computeSnapshot(tx *gorm.DB, start, end time.Time) (*models.Settlement, error) {
	var rows []struct {
		Type     models.TransactionType
		Category models.TransactionCategory
		Total    decimal.Decimal
	}
	if err := tx.Model(&models.Transaction{}).
		Select("type, category, COALESCE(SUM(amount), 0) AS total").
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Group("type, category").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	snap := &models.Settlement{}
	breakdown := SettlementBreakdown{
		Income:  map[models.TransactionCategory]decimal.Decimal{},
		Expense: map[models.TransactionCategory]decimal.Decimal{},
	}
	for _, r := range rows {
		if r.Type == models.TxIncome {
			snap.TotalIncome = snap.TotalIncome.Add(r.Total)
			breakdown.Income[r.Category] = r.Total
		} else {
			snap.TotalExpense = snap.TotalExpense.Add(r.Total)
			breakdown.Expense[r.Category] = r.Total
		}
	}
	snap.NetProfit = snap.TotalIncome.Sub(snap.TotalExpense)

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}
	snap.Breakdown = datatypes.JSON(raw)

	var billings []models.Billing
	if err := tx.Where("period = ? AND status <> ?", utils.YearMonthOf(start), models.BillingCancelled).
		Find(&billings).Error; err != nil {
		return nil, fmt.Errorf("failed to load billings: %w", err)
	}
	for _, b := range billings {
		snap.BilledAmount = snap.BilledAmount.Add(b.Amount)
		switch {
		case b.PaidAmount != nil:
			snap.CollectedAmount = snap.CollectedAmount.Add(*b.PaidAmount)
		case b.Status == models.BillingPaid:
			snap.CollectedAmount = snap.CollectedAmount.Add(b.Amount)
		}
	}

	total, occupied, err := officeOccupancy(tx, start, end)
	if err != nil {
		return nil, err
	}
	snap.TotalRooms = total
	snap.OccupiedRooms = occupied
	snap.OccupancyRate = rate(occupied, total)
	return snap, nil
}

// officeOccupancy counts office rooms and how many of them had a contract
// running at some point in [start, end).
func officeOccupancy(db *gorm.DB, start, end time.Time) (int, int, error) {
	var rooms []models.Room
	if err := db.Find(&rooms).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load rooms: %w", err)
	}
	offices := map[uint]bool{}
	for _, r := range rooms {
		if r.RoomType.IsOffice() {
			offices[r.ID] = true
		}
	}

	var contracts []models.Contract
	if err := db.Where("start_date < ? AND end_date >= ?", end, start).Find(&contracts).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load contracts: %w", err)
	}
	occupied := map[uint]bool{}
	for _, c := range contracts {
		if !offices[c.RoomID] {
			continue
		}
		if c.TerminatedAt != nil && c.TerminatedAt.Before(start) {
			continue
		}
		occupied[c.RoomID] = true
	}
	return len(offices), len(occupied), nil
}

// rate returns part/total as a percentage rounded to one decimal.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	r, _ := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		Float64()
	return r
}

func (s *SettlementService) Confirm(id uint, userID uint) (*models.Settlement, error) {
	var st models.Settlement
	if err := s.DB.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementMissing
		}
		return nil, err
	}
	now := s.Now().UTC()
	updates := map[string]interface{}{
		"is_confirmed": true,
		"confirmed_at": now,
		"confirmed_by": userID,
	}
	if err := s.DB.Model(&st).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm settlement: %w", err)
	}
	zap.L().Info("settlement confirmed", zap.String("year_month", st.YearMonth), zap.Uint("by", userID))
	return s.GetByYearMonth(st.YearMonth)
}

func (s *SettlementService) Unconfirm(id uint) (*models.Settlement, error) {
	var st models.Settlement
	if err := s.DB.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementMissing
		}
		return nil, err
	}
	updates := map[string]interface{}{
		"is_confirmed": false,
		"confirmed_at": nil,
		"confirmed_by": nil,
	}
	if err := s.DB.Model(&st).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to unconfirm settlement: %w", err)
	}
	return s.GetByYearMonth(st.YearMonth)
}
