package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"oreoffice-backend/models"
)

var testNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func won(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func createRoom(t *testing.T, db *gorm.DB, number string, typ models.RoomType) models.Room {
	t.Helper()
	room := models.Room{RoomNumber: number, RoomType: typ, Floor: "3"}
	require.NoError(t, NewRoomService(db).Create(&room))
	return room
}

func createTenant(t *testing.T, db *gorm.DB, name string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{CompanyName: name, RepresentativeName: "김대표", Email: "ceo@example.com"}
	require.NoError(t, NewTenantService(db).Create(&tenant))
	return tenant
}

func contractSvc(db *gorm.DB) *ContractService {
	s := NewContractService(db)
	s.Now = fixedClock
	return s
}

func billingSvc(db *gorm.DB) *BillingService {
	s := NewBillingService(db)
	s.Now = fixedClock
	return s
}

// leaseFixture creates a room, a tenant and a one-year contract from 2025-01-01
// with rent 1,000,000 (+VAT), fee 100,000, deposit and payment day as given.
func leaseFixture(t *testing.T, db *gorm.DB, number string, deposit int64, paymentDay int) *models.Contract {
	t.Helper()
	room := createRoom(t, db, number, models.RoomTypeQuad)
	tenant := createTenant(t, db, "주식회사 "+number)
	c, err := contractSvc(db).Create(CreateContractInput{
		RoomID:        room.ID,
		TenantID:      tenant.ID,
		StartDate:     day("2025-01-01"),
		EndDate:       day("2025-12-31"),
		MonthlyRent:   won(1000000),
		Deposit:       won(deposit),
		ManagementFee: won(100000),
		PaymentDay:    paymentDay,
	})
	require.NoError(t, err)
	return c
}
