package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oreoffice-backend/models"
)

func TestScheduler_RejectsBadSpec(t *testing.T) {
	db := setupTestDB(t)
	s := NewScheduler(billingSvc(db))
	assert.Error(t, s.ScheduleOverdueRefresh("every now and then"))
	assert.NoError(t, s.ScheduleOverdueRefresh("@hourly"))
	assert.NoError(t, s.ScheduleBillingGeneration("0 1 1 * *"))
	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduler_RunRefreshesOnStart(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "321", 0, 10)
	billing := billingSvc(db)
	_, err := billing.Generate("2025-03")
	require.NoError(t, err)

	s := NewScheduler(billing)
	require.NoError(t, s.ScheduleOverdueRefresh("@hourly"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&models.Billing{}).Where("status = ?", models.BillingOverdue).Count(&n)
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_GeneratesCurrentMonth(t *testing.T) {
	db := setupTestDB(t)
	leaseFixture(t, db, "322", 0, 25)
	s := NewScheduler(billingSvc(db))

	s.generateBillings()
	s.generateBillings()

	var billings []models.Billing
	require.NoError(t, db.Find(&billings).Error)
	require.Len(t, billings, 1)
	assert.Equal(t, "2025-03", billings[0].YearMonth)
}
