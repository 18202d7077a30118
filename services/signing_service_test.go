package services

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oreoffice-backend/models"
)

const testSignature = "data:image/png;base64,iVBORw0KGgo="

type sentMail struct {
	To, Company, Link, FileName string
	Document                    []byte
}

type fakeMailer struct {
	requests []sentMail
	signed   []sentMail
}

func (m *fakeMailer) SendSigningRequest(recipient, companyName, link string) error {
	m.requests = append(m.requests, sentMail{To: recipient, Company: companyName, Link: link})
	return nil
}

func (m *fakeMailer) SendSignedContract(recipient, companyName, fileName string, document []byte) error {
	m.signed = append(m.signed, sentMail{To: recipient, Company: companyName, FileName: fileName, Document: document})
	return nil
}

type signingFixture struct {
	svc      *SigningService
	mailer   *fakeMailer
	contract *models.Contract
	now      time.Time
}

func newSigningFixture(t *testing.T, db *gorm.DB) *signingFixture {
	t.Helper()
	f := &signingFixture{mailer: &fakeMailer{}, now: testNow}
	f.contract = leaseFixture(t, db, "701", 3000000, 10)
	require.NoError(t, NewTemplateService(db).Create(&models.ContractTemplate{
		Name:      "기본 임대차 계약서",
		Content:   "{{company_name}} {{room_number}}호 월 {{monthly_rent_vat}}원, 매월 {{payment_day}}일 납부",
		IsDefault: true,
	}))
	uploads := NewUploadService(db, t.TempDir(), 1<<20)
	f.svc = NewSigningService(db, f.mailer, uploads, "https://office.example.com/", 72*time.Hour)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func TestSigning_FullFlow(t *testing.T) {
	db := setupTestDB(t)
	f := newSigningFixture(t, db)

	cs, err := f.svc.CreateSession(CreateSessionInput{ContractID: f.contract.ID, SendEmail: true})
	require.NoError(t, err)
	assert.Equal(t, models.SigningPendingTenant, cs.Status)
	assert.Len(t, cs.Token, 32)
	assert.Equal(t, "주식회사 701 701호 월 1,100,000원, 매월 10일 납부", cs.RenderedContent)
	require.Len(t, f.mailer.requests, 1)
	assert.Equal(t, "ceo@example.com", f.mailer.requests[0].To)
	assert.Equal(t, "https://office.example.com/contract-sign/"+cs.Token, f.mailer.requests[0].Link)

	view, err := f.svc.View(cs.Token)
	require.NoError(t, err)
	assert.Equal(t, "주식회사 701", view.CompanyName)
	assert.Equal(t, "701", view.RoomNumber)

	view, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, models.SigningTenantSigned, view.Status)
	require.NotNil(t, view.TenantSignedAt)

	// a second tenant signature is refused
	_, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "10.0.0.7")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	done, err := f.svc.AdminSign(cs.ID, 1, testSignature)
	require.NoError(t, err)
	assert.Equal(t, models.SigningCompleted, done.Status)
	assert.NotEmpty(t, done.DocumentPath)

	var events []models.SigningEvent
	require.NoError(t, json.Unmarshal(done.History, &events))
	var path []models.SigningStatus
	for _, e := range events {
		path = append(path, e.To)
	}
	assert.Equal(t, []models.SigningStatus{
		models.SigningPendingTenant, models.SigningTenantSigned, models.SigningPendingAdmin, models.SigningCompleted,
	}, path)

	doc, name, err := f.svc.Document(cs.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("contract-%d-%d.html", f.contract.ID, cs.ID), name)
	assert.Contains(t, string(doc), "주식회사 701")
	assert.Contains(t, string(doc), testSignature)

	var stored models.Upload
	require.NoError(t, db.Where("stored_name = ?", done.DocumentPath).First(&stored).Error)
	assert.Equal(t, "계약서", stored.Category)

	sent, err := f.svc.Send(cs.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.SigningSent, sent.Status)
	assert.Equal(t, "ceo@example.com", sent.SentTo)
	require.Len(t, f.mailer.signed, 1)
	assert.Equal(t, name, f.mailer.signed[0].FileName)

	_, err = f.svc.Cancel(cs.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSigning_FailedDocumentStoreKeepsSessionSignable(t *testing.T) {
	db := setupTestDB(t)
	f := newSigningFixture(t, db)
	cs, err := f.svc.CreateSession(CreateSessionInput{ContractID: f.contract.ID})
	require.NoError(t, err)
	_, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "10.0.0.7")
	require.NoError(t, err)

	f.svc.Uploads.MaxBytes = 10
	_, err = f.svc.AdminSign(cs.ID, 1, testSignature)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	got, err := f.svc.Get(cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SigningTenantSigned, got.Status)
	assert.Empty(t, got.DocumentPath)
	assert.Empty(t, got.AdminSignature)
	var n int64
	require.NoError(t, db.Model(&models.Upload{}).Count(&n).Error)
	assert.Zero(t, n)
	files, err := os.ReadDir(f.svc.Uploads.Dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	f.svc.Uploads.MaxBytes = 1 << 20
	done, err := f.svc.AdminSign(cs.ID, 1, testSignature)
	require.NoError(t, err)
	assert.Equal(t, models.SigningCompleted, done.Status)
	assert.NotEmpty(t, done.DocumentPath)

	sent, err := f.svc.Send(cs.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.SigningSent, sent.Status)
}

func TestSigning_ExpiredLink(t *testing.T) {
	db := setupTestDB(t)
	f := newSigningFixture(t, db)
	cs, err := f.svc.CreateSession(CreateSessionInput{ContractID: f.contract.ID})
	require.NoError(t, err)
	assert.Empty(t, f.mailer.requests)

	f.now = testNow.Add(73 * time.Hour)
	_, err = f.svc.View(cs.Token)
	assert.ErrorIs(t, err, ErrSigningExpired)
	_, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "")
	assert.ErrorIs(t, err, ErrSigningExpired)
}

func TestSigning_RefusesOutOfOrderSteps(t *testing.T) {
	db := setupTestDB(t)
	f := newSigningFixture(t, db)
	cs, err := f.svc.CreateSession(CreateSessionInput{ContractID: f.contract.ID})
	require.NoError(t, err)

	_, err = f.svc.AdminSign(cs.ID, 1, testSignature)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.BeginAdminReview(cs.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Send(cs.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, _, err = f.svc.Document(cs.ID)
	assert.ErrorIs(t, err, ErrDocumentNotReady)

	_, err = f.svc.TenantSign(cs.Token, "김대표", "not-an-image", "")
	assert.ErrorIs(t, err, ErrValidation)

	cancelled, err := f.svc.Cancel(cs.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SigningCancelled, cancelled.Status)

	// cancelled links look like they never existed
	_, err = f.svc.View(cs.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSigning_ReviewThenSign(t *testing.T) {
	db := setupTestDB(t)
	f := newSigningFixture(t, db)
	cs, err := f.svc.CreateSession(CreateSessionInput{ContractID: f.contract.ID})
	require.NoError(t, err)
	_, err = f.svc.TenantSign(cs.Token, "김대표", testSignature, "")
	require.NoError(t, err)

	reviewed, err := f.svc.BeginAdminReview(cs.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SigningPendingAdmin, reviewed.Status)

	done, err := f.svc.AdminSign(cs.ID, 2, testSignature)
	require.NoError(t, err)
	assert.Equal(t, models.SigningCompleted, done.Status)
	require.NotNil(t, done.AdminSignerID)
	assert.Equal(t, uint(2), *done.AdminSignerID)
}

func TestCreateSession_NeedsTemplate(t *testing.T) {
	db := setupTestDB(t)
	c := leaseFixture(t, db, "702", 0, 10)
	svc := NewSigningService(db, &fakeMailer{}, NewUploadService(db, t.TempDir(), 0), "", time.Hour)

	_, err := svc.CreateSession(CreateSessionInput{ContractID: c.ID})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	_, err = svc.CreateSession(CreateSessionInput{ContractID: 999})
	assert.ErrorIs(t, err, ErrContractNotFound)
}

func TestRenderContract(t *testing.T) {
	c := &models.Contract{
		StartDate:      day("2025-01-01"),
		EndDate:        day("2025-12-31"),
		MonthlyRent:    won(1000000),
		MonthlyRentVAT: won(1100000),
		Deposit:        won(3000000),
		ManagementFee:  won(0),
		PaymentDay:     25,
		Tenant:         &models.Tenant{CompanyName: "오레상사", RepresentativeName: "이대표", BusinessNumber: "123-45-67890"},
		Room:           &models.Room{RoomNumber: "301"},
	}
	out := RenderContract("{{company_name}}/{{representative_name}}/{{business_number}}/{{room_number}}/"+
		"{{start_date}}~{{end_date}}/{{deposit}}/{{management_fee}}/{{today}}/{{unknown}}", c, day("2025-03-15"))
	assert.Equal(t, "오레상사/이대표/123-45-67890/301/2025년 01월 01일~2025년 12월 31일/3,000,000/0/2025년 03월 15일/{{unknown}}", out)
}

func TestFormatWon(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1100000:  "1,100,000",
		-250000:  "-250,000",
		12345678: "12,345,678",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatWon(won(in)), "FormatWon(%d)", in)
	}
}
