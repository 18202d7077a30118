package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oreoffice-backend/models"
)

func TestGenerate_CreatesPendingBillings(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "501", 0, 25)

	result, err := billingSvc(db).Generate("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Billings, 1)

	b := result.Billings[0]
	assert.Equal(t, c.ID, b.ContractID)
	assert.Equal(t, "2025-03", b.YearMonth)
	assert.Equal(t, models.BillingPending, b.Status)
	assert.True(t, b.Amount.Equal(won(1200000)), "rent incl. VAT plus management fee, got %s", b.Amount)
	assert.Equal(t, day("2025-03-25"), b.DueDate)
}

func TestGenerate_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "502", 0, 1)
	svc := billingSvc(db)

	_, err := svc.Generate("2025-03")
	require.NoError(t, err)
	again, err := svc.Generate("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 1, again.Skipped)

	var n int64
	require.NoError(t, db.Model(&models.Billing{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGenerate_SkipsRentFreeAndOutsideLease(t *testing.T) {
	db := setupTestDB(t)
	room := createRoom(t, db, "503", models.RoomTypeSingle)
	tenant := createTenant(t, db, "렌트프리상사")
	c, err := contractSvc(db).Create(CreateContractInput{
		RoomID:        room.ID,
		TenantID:      tenant.ID,
		StartDate:     day("2025-02-10"),
		EndDate:       day("2025-06-30"),
		MonthlyRent:   won(500000),
		PaymentDay:    5,
		RentFreeStart: dayPtr("2025-03-01"),
		RentFreeEnd:   dayPtr("2025-03-31"),
	})
	require.NoError(t, err)
	svc := billingSvc(db)

	// due 02-05 is before the lease starts
	feb, err := svc.Generate("2025-02")
	require.NoError(t, err)
	assert.Equal(t, 0, feb.Created)

	mar, err := svc.Generate("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 0, mar.Created)
	assert.Equal(t, 1, mar.Skipped)

	apr, err := svc.Generate("2025-04")
	require.NoError(t, err)
	require.Equal(t, 1, apr.Created)
	assert.Equal(t, c.ID, apr.Billings[0].ContractID)

	jul, err := svc.Generate("2025-07")
	require.NoError(t, err)
	assert.Equal(t, 0, jul.Created)
}

func TestGenerate_ClampsPaymentDay(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "504", 0, 31)

	result, err := billingSvc(db).Generate("2025-02")
	require.NoError(t, err)
	require.Len(t, result.Billings, 1)
	assert.Equal(t, day("2025-02-28"), result.Billings[0].DueDate)
}

func TestGenerate_RejectsBadMonth(t *testing.T) {
	db := setupTestDB(t)
	_, err := billingSvc(db).Generate("2025/03")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirmAndCancelPayment(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "505", 0, 10)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	id := gen.Billings[0].ID

	paid, err := svc.ConfirmPayment(id, PaymentInput{PaidAt: day("2025-03-12"), PaymentMethod: "계좌이체"})
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaid, paid.Status)
	require.NotNil(t, paid.TransactionID)
	require.NotNil(t, paid.PaidAmount)
	assert.True(t, paid.PaidAmount.Equal(won(1200000)))

	var tx models.Transaction
	require.NoError(t, db.First(&tx, *paid.TransactionID).Error)
	assert.Equal(t, models.CategoryRent, tx.Category)
	assert.Equal(t, models.TxIncome, tx.Type)
	require.NotNil(t, tx.BillingID)
	assert.Equal(t, id, *tx.BillingID)

	_, err = svc.ConfirmPayment(id, PaymentInput{})
	assert.ErrorIs(t, err, ErrBillingPaid)

	// the linked ledger row is managed from the billing side only
	assert.ErrorIs(t, NewTransactionService(db).Delete(tx.ID), ErrTxLinkedToBilling)

	reverted, err := svc.CancelPayment(id)
	require.NoError(t, err)
	// due date 03-10 is before the clock's 03-15
	assert.Equal(t, models.BillingOverdue, reverted.Status)
	assert.Nil(t, reverted.TransactionID)
	assert.Nil(t, reverted.PaidAt)

	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = svc.CancelPayment(id)
	assert.ErrorIs(t, err, ErrBillingNotPaid)
}

func TestConfirmPayment_RespectsPeriodLock(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "506", 0, 10)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-02")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Settlement{YearMonth: "2025-02", IsConfirmed: true}).Error)

	_, err = svc.ConfirmPayment(gen.Billings[0].ID, PaymentInput{PaidAt: day("2025-02-11")})
	assert.ErrorIs(t, err, ErrPeriodLocked)

	// paying late in an open month is fine
	_, err = svc.ConfirmPayment(gen.Billings[0].ID, PaymentInput{PaidAt: day("2025-03-02")})
	assert.NoError(t, err)
}

func TestTaxInvoice(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "507", 0, 10)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	id := gen.Billings[0].ID

	b, err := svc.IssueTaxInvoice(id, TaxInvoiceInput{Number: "20250310-001"})
	require.NoError(t, err)
	assert.True(t, b.TaxInvoiceIssued)
	assert.Equal(t, "20250310-001", b.TaxInvoiceNumber)
	require.NotNil(t, b.TaxInvoiceIssuedAt)
	assert.Equal(t, day("2025-03-15"), b.TaxInvoiceIssuedAt.UTC())

	_, err = svc.IssueTaxInvoice(id, TaxInvoiceInput{})
	assert.ErrorIs(t, err, ErrTaxInvoiceIssued)
}

func TestCancelAndUpdateBilling(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "508", 0, 20)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	id := gen.Billings[0].ID

	amount := won(900000)
	memo := "할인 적용"
	b, err := svc.Update(id, BillingUpdate{Amount: &amount, Memo: &memo})
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(amount))
	assert.Equal(t, memo, b.Memo)

	b, err = svc.Cancel(id)
	require.NoError(t, err)
	assert.Equal(t, models.BillingCancelled, b.Status)

	_, err = svc.Update(id, BillingUpdate{Amount: &amount})
	assert.ErrorIs(t, err, ErrBillingCancelled)
	_, err = svc.IssueTaxInvoice(id, TaxInvoiceInput{})
	assert.ErrorIs(t, err, ErrBillingCancelled)
}

func TestBulkConfirmPayment_ReportsEachID(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "509", 0, 10)
	leaseFixture(t, db, "510", 0, 10)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	require.Len(t, gen.Billings, 2)

	first := gen.Billings[0].ID
	_, err = svc.ConfirmPayment(first, PaymentInput{})
	require.NoError(t, err)

	result := svc.BulkConfirmPayment([]uint{first, gen.Billings[1].ID, 9999}, PaymentInput{})
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Results, 3)
	assert.Equal(t, ErrBillingPaid.Code, result.Results[0].Code)
	assert.True(t, result.Results[1].Success)
	assert.Equal(t, ErrBillingNotFound.Code, result.Results[2].Code)
}

func TestRefreshOverdue(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "511", 0, 10)
	leaseFixture(t, db, "512", 0, 20)
	svc := billingSvc(db)
	_, err := svc.Generate("2025-03")
	require.NoError(t, err)

	n, err := svc.RefreshOverdue(testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	overdue, err := svc.List(BillingFilter{Status: models.BillingOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, day("2025-03-10"), overdue[0].DueDate.UTC())

	// due today is not overdue yet
	n, err = svc.RefreshOverdue(day("2025-03-20"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDeleteBilling_FreesTheMonth(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "510", 0, 10)
	svc := billingSvc(db)

	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(gen.Billings[0].ID))

	var n int64
	require.NoError(t, db.Unscoped().Model(&models.Billing{}).Count(&n).Error)
	assert.Zero(t, n)

	again, err := svc.Generate("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Created)
	assert.Equal(t, 0, again.Skipped)
}

func TestUpdateBilling_DueDateDecidesStatusByDay(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "511", 0, 20)
	svc := billingSvc(db)
	gen, err := svc.Generate("2025-03")
	require.NoError(t, err)
	id := gen.Billings[0].ID

	late := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	b, err := svc.Update(id, BillingUpdate{DueDate: &late})
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-14"), b.DueDate.UTC())
	assert.Equal(t, models.BillingOverdue, b.Status)

	kst := time.FixedZone("KST", 9*60*60)
	today := time.Date(2025, 3, 15, 18, 0, 0, 0, kst)
	b, err = svc.Update(id, BillingUpdate{DueDate: &today})
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-15"), b.DueDate.UTC())
	assert.Equal(t, models.BillingPending, b.Status)
}
