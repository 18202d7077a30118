package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

type DashboardService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db, Now: time.Now}
}

type BillingStat struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Summary struct {
	YearMonth          string                      `json:"year_month"`
	TotalRooms         int                         `json:"total_rooms"`
	RoomsByStatus      map[models.RoomStatus]int64 `json:"rooms_by_status"`
	OfficeRooms        int                         `json:"office_rooms"`
	OccupiedOffices    int                         `json:"occupied_offices"`
	OccupancyRate      float64                     `json:"occupancy_rate"`
	MonthIncome        decimal.Decimal             `json:"month_income"`
	MonthExpense       decimal.Decimal             `json:"month_expense"`
	MonthNet           decimal.Decimal             `json:"month_net"`
	Pending            BillingStat                 `json:"pending"`
	Overdue            BillingStat                 `json:"overdue"`
	ExpiringContracts  []models.Contract           `json:"expiring_contracts"`
	RecentTransactions []models.Transaction        `json:"recent_transactions"`
}

type MonthlyPoint struct {
	YearMonth string          `json:"year_month"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Net       decimal.Decimal `json:"net"`
}

type BreakEven struct {
	Months               int             `json:"months"`
	From                 string          `json:"from"`
	To                   string          `json:"to"`
	FixedCost            decimal.Decimal `json:"fixed_cost"`
	RentRevenue          decimal.Decimal `json:"rent_revenue"`
	AvgRentPerRoom       decimal.Decimal `json:"avg_rent_per_room"`
	OfficeRooms          int             `json:"office_rooms"`
	OccupiedRooms        int             `json:"occupied_rooms"`
	CurrentOccupancyRate float64         `json:"current_occupancy_rate"`
	BEPRooms             int             `json:"bep_rooms"`
	BEPOccupancyRate     float64         `json:"bep_occupancy_rate"`
	RoomGap              int             `json:"room_gap"`
	Achieved             bool            `json:"achieved"`
}

func (s *DashboardService) today() time.Time {
	return utils.TruncateDay(s.Now())
}

func (s *DashboardService) Summary() (*Summary, error) {
	today := s.today()
	monthStart, _ := utils.ParseYearMonth(utils.YearMonthOf(today))
	start, end := utils.MonthRange(monthStart)

	out := &Summary{
		YearMonth:     utils.YearMonthOf(today),
		RoomsByStatus: map[models.RoomStatus]int64{},
	}

	var statusRows []struct {
		Status models.RoomStatus
		Count  int64
	}
	if err := s.DB.Model(&models.Room{}).Select("status, COUNT(*) AS count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	for _, r := range statusRows {
		out.RoomsByStatus[r.Status] = r.Count
		out.TotalRooms += int(r.Count)
	}

	offices, occupied, err := currentOccupancy(s.DB, today)
	if err != nil {
		return nil, err
	}
	out.OfficeRooms, out.OccupiedOffices = offices, occupied
	out.OccupancyRate = rate(occupied, offices)

	income, expense, err := sumByType(s.DB, start, end)
	if err != nil {
		return nil, err
	}
	out.MonthIncome, out.MonthExpense = income, expense
	out.MonthNet = income.Sub(expense)

	if out.Pending, err = billingStat(s.DB, models.BillingPending); err != nil {
		return nil, err
	}
	if out.Overdue, err = billingStat(s.DB, models.BillingOverdue); err != nil {
		return nil, err
	}

	out.ExpiringContracts = []models.Contract{}
	if err := s.DB.Preload("Room").Preload("Tenant").
		Where("is_active = ? AND end_date >= ? AND end_date < ?", true, today, today.AddDate(0, 0, 31)).
		Order("end_date ASC").
		Find(&out.ExpiringContracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load expiring contracts: %w", err)
	}

	out.RecentTransactions = []models.Transaction{}
	if err := s.DB.Preload("Room").Preload("Tenant").
		Order("transaction_date DESC, id DESC").
		Limit(5).
		Find(&out.RecentTransactions).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}
	return out, nil
}

// Monthly returns income, expense and net for each month of year.
func (s *DashboardService) Monthly(year int) ([]MonthlyPoint, error) {
	if year <= 0 {
		year = s.today().Year()
	}
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []struct {
		TransactionDate time.Time
		Type            models.TransactionType
		Amount          decimal.Decimal
	}
	if err := s.DB.Model(&models.Transaction{}).
		Select("transaction_date, type, amount").
		Where("transaction_date >= ? AND transaction_date < ?", from, to).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	points := make([]MonthlyPoint, 12)
	for i := range points {
		points[i].YearMonth = utils.YearMonthOf(from.AddDate(0, i, 0))
	}
	for _, r := range rows {
		p := &points[int(r.TransactionDate.Month())-1]
		if r.Type == models.TxIncome {
			p.Income = p.Income.Add(r.Amount)
		} else {
			p.Expense = p.Expense.Add(r.Amount)
		}
	}
	for i := range points {
		points[i].Net = points[i].Income.Sub(points[i].Expense)
	}
	return points, nil
}

// BreakEven estimates how many offices must be let to cover the average
// monthly expense of the last months complete months.
func (s *DashboardService) BreakEven(months int) (*BreakEven, error) {
	if months <= 0 {
		months = 3
	}
	thisMonth, _ := utils.ParseYearMonth(utils.YearMonthOf(s.today()))
	from := thisMonth.AddDate(0, -months, 0)

	out := &BreakEven{
		Months: months,
		From:   utils.YearMonthOf(from),
		To:     utils.YearMonthOf(thisMonth.AddDate(0, -1, 0)),
	}

	_, expense, err := sumByType(s.DB, from, thisMonth)
	if err != nil {
		return nil, err
	}
	n := decimal.NewFromInt(int64(months))
	out.FixedCost = expense.Div(n).Round(0)

	var rent struct{ Total decimal.Decimal }
	if err := s.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("type = ? AND category IN ? AND transaction_date >= ? AND transaction_date < ?",
			models.TxIncome, []models.TransactionCategory{models.CategoryRent, models.CategoryRentOffset}, from, thisMonth).
		Scan(&rent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum rent revenue: %w", err)
	}
	out.RentRevenue = rent.Total

	// occupied office-months over the window
	var roomMonths int64
	for m := from; m.Before(thisMonth); m = m.AddDate(0, 1, 0) {
		start, end := utils.MonthRange(m)
		_, occupied, err := officeOccupancy(s.DB, start, end)
		if err != nil {
			return nil, err
		}
		roomMonths += int64(occupied)
	}
	if roomMonths > 0 {
		out.AvgRentPerRoom = out.RentRevenue.Div(decimal.NewFromInt(roomMonths)).Round(0)
	}

	offices, occupied, err := currentOccupancy(s.DB, s.today())
	if err != nil {
		return nil, err
	}
	out.OfficeRooms, out.OccupiedRooms = offices, occupied
	out.CurrentOccupancyRate = rate(occupied, offices)

	if out.AvgRentPerRoom.IsPositive() {
		out.BEPRooms = int(out.FixedCost.Div(out.AvgRentPerRoom).Ceil().IntPart())
		out.BEPOccupancyRate = rate(out.BEPRooms, offices)
	}
	out.RoomGap = out.BEPRooms - occupied
	out.Achieved = out.AvgRentPerRoom.IsPositive() && occupied >= out.BEPRooms
	return out, nil
}

// currentOccupancy counts office rooms and those with a lease running on day.
func currentOccupancy(db *gorm.DB, day time.Time) (int, int, error) {
	var rooms []models.Room
	if err := db.Select("id, room_type").Find(&rooms).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to load rooms: %w", err)
	}
	var officeIDs []uint
	for _, r := range rooms {
		if r.RoomType.IsOffice() {
			officeIDs = append(officeIDs, r.ID)
		}
	}
	if len(officeIDs) == 0 {
		return 0, 0, nil
	}
	var occupied int64
	if err := db.Model(&models.Contract{}).
		Where("is_active = ? AND start_date <= ? AND room_id IN ?", true, day, officeIDs).
		Distinct("room_id").
		Count(&occupied).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count occupied rooms: %w", err)
	}
	return len(officeIDs), int(occupied), nil
}

func sumByType(db *gorm.DB, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var rows []struct {
		Type  models.TransactionType
		Total decimal.Decimal
	}
	if err := db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Group("type").
		Scan(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	var income, expense decimal.Decimal
	for _, r := range rows {
		if r.Type == models.TxIncome {
			income = r.Total
		} else {
			expense = r.Total
		}
	}
	return income, expense, nil
}

// billingStat counts open billings of a status and what they still owe.
func billingStat(db *gorm.DB, status models.BillingStatus) (BillingStat, error) {
	var st BillingStat
	if err := db.Model(&models.Billing{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount - COALESCE(paid_amount, 0)), 0) AS amount").
		Where("status = ?", status).
		Scan(&st).Error; err != nil {
		return st, fmt.Errorf("failed to sum %s billings: %w", status, err)
	}
	return st, nil
}
