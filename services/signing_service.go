package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

// Mailer delivers signing mail. utils.SMTPMailer implements it.
type Mailer interface {
	SendSigningRequest(recipient, companyName, link string) error
	SendSignedContract(recipient, companyName, fileName string, document []byte) error
}

type SigningService struct {
	DB          *gorm.DB
	Mailer      Mailer
	Uploads     *UploadService
	FrontendURL string
	LinkTTL     time.Duration
	Now         func() time.Time
}

func NewSigningService(db *gorm.DB, mailer Mailer, uploads *UploadService, frontendURL string, linkTTL time.Duration) *SigningService {
	return &SigningService{
		DB:          db,
		Mailer:      mailer,
		Uploads:     uploads,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		LinkTTL:     linkTTL,
		Now:         time.Now,
	}
}

// signingTransitions lists the states reachable from each state.
var signingTransitions = map[models.SigningStatus][]models.SigningStatus{
	models.SigningPendingTenant: {models.SigningTenantSigned, models.SigningCancelled},
	models.SigningTenantSigned:  {models.SigningPendingAdmin, models.SigningCancelled},
	models.SigningPendingAdmin:  {models.SigningCompleted, models.SigningCancelled},
	models.SigningCompleted:     {models.SigningSent, models.SigningCancelled},
}

func canTransition(from, to models.SigningStatus) bool {
	for _, s := range signingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transitionError(from, to models.SigningStatus) *Error {
	return newError(ErrInvalidTransition, "error.invalidSigningTransition",
		fmt.Sprintf("'%s' 상태의 서명 요청은 '%s' 상태로 변경할 수 없습니다.", from, to))
}

type CreateSessionInput struct {
	ContractID uint
	TemplateID *uint
	SendEmail  bool
	Email      string
}

type SigningFilter struct {
	Status     models.SigningStatus
	ContractID uint
}

// PublicSession is what the tenant sees behind the signing link.
type PublicSession struct {
	Status          models.SigningStatus `json:"status"`
	CompanyName     string               `json:"company_name"`
	RoomNumber      string               `json:"room_number"`
	RenderedContent string               `json:"rendered_content"`
	ExpiresAt       *time.Time           `json:"expires_at,omitempty"`
	TenantSignedAt  *time.Time           `json:"tenant_signed_at,omitempty"`
}

func (s *SigningService) now() time.Time {
	return s.Now().UTC()
}

// Link is the tenant-facing signing URL for a token.
func (s *SigningService) Link(token string) string {
	return fmt.Sprintf("%s/contract-sign/%s", s.FrontendURL, token)
}

func (s *SigningService) List(f SigningFilter) ([]models.ContractSigningSession, error) {
	q := s.DB.Model(&models.ContractSigningSession{}).
		Preload("Contract").Preload("Contract.Tenant").Preload("Contract.Room")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContractID > 0 {
		q = q.Where("contract_id = ?", f.ContractID)
	}
	var out []models.ContractSigningSession
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list signing sessions: %w", err)
	}
	return out, nil
}

func (s *SigningService) Get(id uint) (*models.ContractSigningSession, error) {
	var cs models.ContractSigningSession
	if err := s.DB.Preload("Contract").Preload("Contract.Tenant").Preload("Contract.Room").
		First(&cs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load signing session: %w", err)
	}
	return &cs, nil
}

func lockSession(tx *gorm.DB, cond ...interface{}) (*models.ContractSigningSession, error) {
	var cs models.ContractSigningSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Contract").Preload("Contract.Tenant").Preload("Contract.Room").
		First(&cs, cond...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &cs, nil
}

// CreateSession renders the template for a contract and opens a signing
// request waiting for the tenant.
func (s *SigningService) CreateSession(in CreateSessionInput) (*models.ContractSigningSession, error) {
	contract, err := loadContract(s.DB, in.ContractID)
	if err != nil {
		return nil, err
	}
	var tpl *models.ContractTemplate
	if in.TemplateID != nil && *in.TemplateID > 0 {
		tpl, err = findTemplate(s.DB, *in.TemplateID)
	} else {
		tpl, err = defaultTemplate(s.DB)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.LinkTTL)
	cs := models.ContractSigningSession{
		ContractID:      contract.ID,
		TemplateID:      tpl.ID,
		Token:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		Status:          models.SigningPendingTenant,
		RenderedContent: RenderContract(tpl.Content, contract, now),
		ExpiresAt:       &expires,
	}
	if err := appendHistory(&cs, "", models.SigningPendingTenant, now, "admin"); err != nil {
		return nil, err
	}
	if err := s.DB.Create(&cs).Error; err != nil {
		return nil, fmt.Errorf("failed to create signing session: %w", err)
	}
	zap.L().Info("signing session created", zap.Uint("session_id", cs.ID), zap.Uint("contract_id", contract.ID))

	if in.SendEmail {
		recipient := strings.TrimSpace(in.Email)
		if recipient == "" && contract.Tenant != nil {
			recipient = contract.Tenant.Email
		}
		if recipient == "" {
			zap.L().Warn("signing request not mailed: tenant has no email", zap.Uint("session_id", cs.ID))
		} else if err := s.Mailer.SendSigningRequest(recipient, companyOf(contract), s.Link(cs.Token)); err != nil {
			zap.L().Error("failed to mail signing request", zap.Uint("session_id", cs.ID), zap.Error(err))
		}
	}
	return s.Get(cs.ID)
}

// View returns the tenant's view of a signing link.
func (s *SigningService) View(token string) (*PublicSession, error) {
	var cs models.ContractSigningSession
	if err := s.DB.Preload("Contract").Preload("Contract.Tenant").Preload("Contract.Room").
		Where("token = ?", token).First(&cs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if cs.Status == models.SigningCancelled {
		return nil, ErrSessionNotFound
	}
	if cs.Status == models.SigningPendingTenant && s.expired(&cs) {
		return nil, ErrSigningExpired
	}
	view := &PublicSession{
		Status:          cs.Status,
		RenderedContent: cs.RenderedContent,
		ExpiresAt:       cs.ExpiresAt,
		TenantSignedAt:  cs.TenantSignedAt,
	}
	if cs.Contract != nil {
		view.CompanyName = companyOf(cs.Contract)
		if cs.Contract.Room != nil {
			view.RoomNumber = cs.Contract.Room.RoomNumber
		}
	}
	return view, nil
}

func (s *SigningService) expired(cs *models.ContractSigningSession) bool {
	return cs.ExpiresAt != nil && s.now().After(*cs.ExpiresAt)
}

// TenantSign records the tenant's signature behind a link.
func (s *SigningService) TenantSign(token, signerName, signature, ip string) (*PublicSession, error) {
	signerName = strings.TrimSpace(signerName)
	if signerName == "" {
		return nil, validationError("서명자 이름은 필수입니다.")
	}
	if err := validateSignature(signature); err != nil {
		return nil, err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cs, err := lockSession(tx, "token = ?", token)
		if err != nil {
			return err
		}
		if cs.Status == models.SigningCancelled {
			return ErrSessionNotFound
		}
		if !canTransition(cs.Status, models.SigningTenantSigned) {
			return transitionError(cs.Status, models.SigningTenantSigned)
		}
		if s.expired(cs) {
			return ErrSigningExpired
		}
		now := s.now()
		cs.TenantSignerName = signerName
		cs.TenantSignature = signature
		cs.TenantSignedAt = &now
		cs.TenantIP = ip
		if err := s.transition(tx, cs, models.SigningTenantSigned, now, "tenant:"+signerName); err != nil {
			return err
		}
		zap.L().Info("tenant signed contract", zap.Uint("session_id", cs.ID), zap.String("ip", ip))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.View(token)
}

// BeginAdminReview moves a tenant-signed session into the admin's queue.
func (s *SigningService) BeginAdminReview(id uint, adminID uint) (*models.ContractSigningSession, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cs, err := lockSession(tx, id)
		if err != nil {
			return err
		}
		return s.transition(tx, cs, models.SigningPendingAdmin, s.now(), adminLabel(adminID))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// AdminSign countersigns, stores the final document and completes the
// session in one transaction. A session still in tenant_signed goes through
// pending_admin first.
func (s *SigningService) AdminSign(id uint, adminID uint, signature string) (*models.ContractSigningSession, error) {
	if err := validateSignature(signature); err != nil {
		return nil, err
	}

	var stored string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cs, err := lockSession(tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		by := adminLabel(adminID)
		if cs.Status == models.SigningTenantSigned {
			if err := s.transition(tx, cs, models.SigningPendingAdmin, now, by); err != nil {
				return err
			}
		}
		if !canTransition(cs.Status, models.SigningCompleted) {
			return transitionError(cs.Status, models.SigningCompleted)
		}

		cs.AdminSignature = signature
		cs.AdminSignerID = &adminID
		cs.AdminSignedAt = &now
		document, err := RenderDocument(cs, now)
		if err != nil {
			return fmt.Errorf("failed to render contract document: %w", err)
		}
		up, err := s.Uploads.WithTx(tx).Save(bytes.NewReader(document), documentFileName(cs), "text/html; charset=utf-8", UploadMeta{
			Category:   "계약서",
			ContractID: uintPtr(cs.ContractID),
			TenantID:   tenantIDOf(cs.Contract),
			RoomID:     roomIDOf(cs.Contract),
			UploadedBy: uintPtr(adminID),
		})
		if err != nil {
			return fmt.Errorf("failed to store contract document: %w", err)
		}
		stored = up.StoredName
		cs.DocumentPath = up.StoredName
		return s.transition(tx, cs, models.SigningCompleted, now, by)
	})
	if err != nil {
		if stored != "" {
			s.Uploads.Discard(stored)
		}
		return nil, err
	}
	zap.L().Info("contract signing completed", zap.Uint("session_id", id), zap.Uint("admin_id", adminID))
	return s.Get(id)
}

// Send mails the completed document to the tenant, or to email when given.
func (s *SigningService) Send(id uint, email string) (*models.ContractSigningSession, error) {
	cs, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if cs.Status != models.SigningCompleted {
		return nil, transitionError(cs.Status, models.SigningSent)
	}
	recipient := strings.TrimSpace(email)
	if recipient == "" && cs.Contract != nil && cs.Contract.Tenant != nil {
		recipient = cs.Contract.Tenant.Email
	}
	if recipient == "" {
		return nil, validationError("받는 사람 이메일이 없습니다.")
	}
	document, fileName, err := s.Document(id)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendSignedContract(recipient, companyOf(cs.Contract), fileName, document); err != nil {
		return nil, fmt.Errorf("failed to send contract: %w", err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := lockSession(tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		locked.SentTo = recipient
		locked.SentAt = &now
		return s.transition(tx, locked, models.SigningSent, now, "admin")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel withdraws a session that has not been sent.
func (s *SigningService) Cancel(id uint, adminID uint) (*models.ContractSigningSession, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cs, err := lockSession(tx, id)
		if err != nil {
			return err
		}
		return s.transition(tx, cs, models.SigningCancelled, s.now(), adminLabel(adminID))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Document returns the stored final document of a completed session.
func (s *SigningService) Document(id uint) ([]byte, string, error) {
	cs, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}
	if cs.DocumentPath == "" {
		return nil, "", ErrDocumentNotReady
	}
	b, err := s.Uploads.Read(cs.DocumentPath)
	if errors.Is(err, ErrUploadNotFound) {
		return nil, "", ErrDocumentNotReady
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read contract document: %w", err)
	}
	return b, documentFileName(cs), nil
}

// transition moves cs to the next state, appends history and saves it.
func (s *SigningService) transition(tx *gorm.DB, cs *models.ContractSigningSession, to models.SigningStatus, at time.Time, by string) error {
	if !canTransition(cs.Status, to) {
		return transitionError(cs.Status, to)
	}
	if err := appendHistory(cs, cs.Status, to, at, by); err != nil {
		return err
	}
	cs.Status = to
	contract := cs.Contract
	cs.Contract = nil
	err := tx.Save(cs).Error
	cs.Contract = contract
	if err != nil {
		return fmt.Errorf("failed to save signing session: %w", err)
	}
	return nil
}

func appendHistory(cs *models.ContractSigningSession, from, to models.SigningStatus, at time.Time, by string) error {
	var events []models.SigningEvent
	if len(cs.History) > 0 {
		if err := json.Unmarshal(cs.History, &events); err != nil {
			return fmt.Errorf("failed to read signing history: %w", err)
		}
	}
	events = append(events, models.SigningEvent{From: from, To: to, At: at, By: by})
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	cs.History = datatypes.JSON(raw)
	return nil
}

func validateSignature(sig string) error {
	if !strings.HasPrefix(sig, "data:image/") || !strings.Contains(sig, ";base64,") {
		return validationError("서명 이미지가 올바르지 않습니다.")
	}
	return nil
}

func adminLabel(id uint) string {
	return fmt.Sprintf("admin:%d", id)
}

func documentFileName(cs *models.ContractSigningSession) string {
	return fmt.Sprintf("contract-%d-%d.html", cs.ContractID, cs.ID)
}

func companyOf(c *models.Contract) string {
	if c == nil || c.Tenant == nil {
		return ""
	}
	return c.Tenant.CompanyName
}

func tenantIDOf(c *models.Contract) *uint {
	if c == nil {
		return nil
	}
	return nonZero(c.TenantID)
}

func roomIDOf(c *models.Contract) *uint {
	if c == nil {
		return nil
	}
	return nonZero(c.RoomID)
}

// RenderContract fills the {{placeholders}} of a template from the contract.
func RenderContract(content string, c *models.Contract, today time.Time) string {
	var tenant models.Tenant
	if c.Tenant != nil {
		tenant = *c.Tenant
	}
	roomNumber := ""
	if c.Room != nil {
		roomNumber = c.Room.RoomNumber
	}
	r := strings.NewReplacer(
		"{{company_name}}", tenant.CompanyName,
		"{{representative_name}}", tenant.RepresentativeName,
		"{{business_number}}", tenant.BusinessNumber,
		"{{room_number}}", roomNumber,
		"{{start_date}}", koreanDate(c.StartDate),
		"{{end_date}}", koreanDate(c.EndDate),
		"{{monthly_rent}}", FormatWon(c.MonthlyRent),
		"{{monthly_rent_vat}}", FormatWon(c.MonthlyRentVAT),
		"{{deposit}}", FormatWon(c.Deposit),
		"{{management_fee}}", FormatWon(c.ManagementFee),
		"{{payment_day}}", fmt.Sprintf("%d", c.PaymentDay),
		"{{today}}", koreanDate(today),
	)
	return r.Replace(content)
}

func koreanDate(t time.Time) string {
	return t.Format("2006년 01월 02일")
}

// FormatWon renders an amount with thousands separators, e.g. 1,100,000.
func FormatWon(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

var _ Mailer = (*utils.SMTPMailer)(nil)
