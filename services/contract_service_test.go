package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oreoffice-backend/models"
)

func TestCreateContract_SetsRoomAndVAT(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "301", 2000000, 10)

	assert.True(t, c.IsActive)
	assert.True(t, c.MonthlyRentVAT.Equal(won(1100000)))
	assert.Equal(t, models.DepositHeld, c.DepositStatus)

	room, err := NewRoomService(db).Get(c.RoomID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, room.Status)
	require.NotNil(t, room.ActiveContract)
	assert.Equal(t, c.ID, room.ActiveContract.ID)
}

func TestCreateContract_FutureStartReservesRoom(t *testing.T) {
	db := setupTestDB(t)
	room := createRoom(t, db, "302", models.RoomTypeSingle)
	tenant := createTenant(t, db, "미래상사")

	_, err := contractSvc(db).Create(CreateContractInput{
		RoomID:      room.ID,
		TenantID:    tenant.ID,
		StartDate:   day("2025-05-01"),
		EndDate:     day("2026-04-30"),
		MonthlyRent: won(500000),
		PaymentDay:  1,
	})
	require.NoError(t, err)

	got, err := NewRoomService(db).Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, got.Status)
}

func TestCreateContract_OneActivePerRoom(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "303", 0, 1)
	other := createTenant(t, db, "중복상사")

	_, err := contractSvc(db).Create(CreateContractInput{
		RoomID:      c.RoomID,
		TenantID:    other.ID,
		StartDate:   day("2025-02-01"),
		EndDate:     day("2025-12-31"),
		MonthlyRent: won(1),
		PaymentDay:  1,
	})
	assert.ErrorIs(t, err, ErrRoomHasActiveContract)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateContract_Validation(t *testing.T) {
	db := setupTestDB(t)
	room := createRoom(t, db, "304", models.RoomTypeSingle)
	tenant := createTenant(t, db, "검증상사")
	svc := contractSvc(db)

	cases := map[string]CreateContractInput{
		"end before start": {RoomID: room.ID, TenantID: tenant.ID, StartDate: day("2025-06-01"), EndDate: day("2025-05-01")},
		"payment day":      {RoomID: room.ID, TenantID: tenant.ID, StartDate: day("2025-06-01"), EndDate: day("2025-07-01"), PaymentDay: 32},
		"half rent free":   {RoomID: room.ID, TenantID: tenant.ID, StartDate: day("2025-06-01"), EndDate: day("2025-07-01"), RentFreeStart: dayPtr("2025-06-01")},
		"negative rent":    {RoomID: room.ID, TenantID: tenant.ID, StartDate: day("2025-06-01"), EndDate: day("2025-07-01"), MonthlyRent: won(-1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.Create(CreateContractInput{RoomID: 9999, TenantID: tenant.ID, StartDate: day("2025-06-01"), EndDate: day("2025-07-01")})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateContract_RecordsReceivedDeposit(t *testing.T) {
	db := setupTestDB(t)
	room := createRoom(t, db, "305", models.RoomTypeDouble)
	tenant := createTenant(t, db, "보증금상사")

	c, err := contractSvc(db).Create(CreateContractInput{
		RoomID:            room.ID,
		TenantID:          tenant.ID,
		StartDate:         day("2025-03-01"),
		EndDate:           day("2026-02-28"),
		MonthlyRent:       won(700000),
		Deposit:           won(1400000),
		PaymentDay:        5,
		DepositReceived:   true,
		DepositReceivedAt: dayPtr("2025-02-25"),
	})
	require.NoError(t, err)

	txs, err := NewTransactionService(db).List(TransactionFilter{ContractID: c.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.CategoryDepositIn, txs[0].Category)
	assert.True(t, txs[0].Amount.Equal(won(1400000)))
	assert.Equal(t, day("2025-02-25"), txs[0].TransactionDate.UTC())
}

func TestTerminate_EarlyConvertsDepositToPenalty(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "401", 500000, 10)

	result, err := contractSvc(db).Terminate(c.ID, TerminateInput{
		Type:         models.TerminationEarly,
		TerminatedAt: day("2025-03-20"),
		Reason:       "사업장 이전",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Transaction)
	assert.Equal(t, models.CategoryPenalty, result.Transaction.Category)
	assert.Equal(t, models.TxIncome, result.Transaction.Type)
	assert.True(t, result.Transaction.Amount.Equal(won(500000)))

	var txs []models.Transaction
	require.NoError(t, db.Where("contract_id = ?", c.ID).Find(&txs).Error)
	assert.Len(t, txs, 1)

	assert.False(t, result.Contract.IsActive)
	assert.Equal(t, models.TerminationEarly, result.Contract.TerminationType)
	assert.Equal(t, models.DepositToPenalty, result.Contract.DepositStatus)
	assert.Equal(t, "사업장 이전", result.Contract.TerminationReason)

	room, err := NewRoomService(db).Get(c.RoomID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomContractEnded, room.Status)
	assert.Equal(t, "주식회사 401", room.LastCompanyName)
	require.NotNil(t, room.ContractEndedAt)
	assert.Equal(t, day("2025-03-20"), room.ContractEndedAt.UTC())
	assert.Nil(t, room.ActiveContract)
}

func TestTerminate_ExpiryOffsetsFinalBilling(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "402", 3000000, 10)
	bs := billingSvc(db)

	_, err := bs.Generate("2025-03")
	require.NoError(t, err)
	_, err = bs.Generate("2025-04")
	require.NoError(t, err)

	result, err := contractSvc(db).Terminate(c.ID, TerminateInput{
		Type:         models.TerminationExpiry,
		TerminatedAt: day("2025-03-31"),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Transaction)
	assert.Equal(t, models.CategoryRentOffset, result.Transaction.Category)
	assert.True(t, result.Transaction.Amount.Equal(won(3000000)))
	assert.Equal(t, models.DepositToRentOffset, result.Contract.DepositStatus)

	require.NotNil(t, result.OffsetBilling)
	assert.Equal(t, models.BillingPaid, result.OffsetBilling.Status)
	assert.Equal(t, string(models.CategoryRentOffset), result.OffsetBilling.PaymentMethod)
	require.NotNil(t, result.OffsetBilling.TransactionID)
	assert.Equal(t, result.Transaction.ID, *result.OffsetBilling.TransactionID)
	assert.Equal(t, int64(1), result.CancelledBillings)

	april, err := bs.List(BillingFilter{YearMonth: "2025-04", ContractID: c.ID})
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.Equal(t, models.BillingCancelled, april[0].Status)
}

func TestTerminate_SmallDepositLeavesBalanceOpen(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "406", 500000, 10)
	bs := billingSvc(db)

	gen, err := bs.Generate("2025-03")
	require.NoError(t, err)
	require.Len(t, gen.Billings, 1)
	id := gen.Billings[0].ID

	result, err := contractSvc(db).Terminate(c.ID, TerminateInput{
		Type:         models.TerminationExpiry,
		TerminatedAt: day("2025-03-31"),
	})
	require.NoError(t, err)

	b := result.OffsetBilling
	require.NotNil(t, b)
	assert.Equal(t, models.BillingPending, b.Status)
	require.NotNil(t, b.PaidAmount)
	assert.True(t, b.PaidAmount.Equal(won(500000)), "credited %s", b.PaidAmount)
	assert.Nil(t, b.TransactionID)
	assert.Contains(t, b.Memo, "보증금 상계 500,000원")
	require.NotNil(t, result.Transaction.BillingID)
	assert.Equal(t, id, *result.Transaction.BillingID)

	summary, err := dashboardSvc(db).Summary()
	require.NoError(t, err)
	assert.True(t, summary.Pending.Amount.Equal(won(700000)), "outstanding %s", summary.Pending.Amount)

	// the offset cannot be removed from the ledger on its own
	err = NewTransactionService(db).Delete(result.Transaction.ID)
	assert.ErrorIs(t, err, ErrTxLinkedToBilling)

	paid, err := bs.ConfirmPayment(id, PaymentInput{})
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaid, paid.Status)
	assert.True(t, paid.PaidAmount.Equal(won(1200000)))
	require.NotNil(t, paid.TransactionID)
	var rest models.Transaction
	require.NoError(t, db.First(&rest, *paid.TransactionID).Error)
	assert.True(t, rest.Amount.Equal(won(700000)), "remainder %s", rest.Amount)

	reverted, err := bs.CancelPayment(id)
	require.NoError(t, err)
	assert.Equal(t, models.BillingOverdue, reverted.Status)
	require.NotNil(t, reverted.PaidAmount)
	assert.True(t, reverted.PaidAmount.Equal(won(500000)))
}

func TestTerminate_ZeroDepositCreatesNoTransaction(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "403", 0, 1)

	result, err := contractSvc(db).Terminate(c.ID, TerminateInput{Type: models.TerminationEarly})
	require.NoError(t, err)
	assert.Nil(t, result.Transaction)
	assert.Equal(t, models.DepositToPenalty, result.Contract.DepositStatus)
	require.NotNil(t, result.Contract.TerminatedAt)
	assert.Equal(t, day("2025-03-15"), result.Contract.TerminatedAt.UTC())

	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTerminate_Refusals(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "404", 100000, 1)
	svc := contractSvc(db)

	_, err := svc.Terminate(c.ID, TerminateInput{Type: "해지"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, db.Create(&models.Settlement{YearMonth: "2025-02", IsConfirmed: true}).Error)
	_, err = svc.Terminate(c.ID, TerminateInput{Type: models.TerminationEarly, TerminatedAt: day("2025-02-20")})
	assert.ErrorIs(t, err, ErrPeriodLocked)

	// the refused attempt left nothing behind
	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = svc.Terminate(c.ID, TerminateInput{Type: models.TerminationEarly, TerminatedAt: day("2025-03-01")})
	require.NoError(t, err)
	_, err = svc.Terminate(c.ID, TerminateInput{Type: models.TerminationEarly})
	assert.True(t, errors.Is(err, ErrContractInactive))
}

func TestDeleteContract(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "405", 0, 1)
	svc := contractSvc(db)

	assert.ErrorIs(t, svc.Delete(c.ID), ErrContractActive)

	_, err := svc.Terminate(c.ID, TerminateInput{Type: models.TerminationExpiry})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(c.ID))

	_, err = svc.Get(c.ID)
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestExpiring(t *testing.T) {
	db := setupTestDB(t)
	room := createRoom(t, db, "406", models.RoomTypeSingle)
	tenant := createTenant(t, db, "만기상사")
	svc := contractSvc(db)
	_, err := svc.Create(CreateContractInput{
		RoomID: room.ID, TenantID: tenant.ID,
		StartDate: day("2024-04-01"), EndDate: day("2025-04-10"),
		MonthlyRent: won(400000), PaymentDay: 1,
	})
	require.NoError(t, err)
	leaseFixture(t, db, "407", 0, 1) // ends 2025-12-31

	soon, err := svc.Expiring(30)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, room.ID, soon[0].RoomID)
}
