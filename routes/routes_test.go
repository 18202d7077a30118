package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"oreoffice-backend/config"
	"oreoffice-backend/models"
	"oreoffice-backend/routes"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	svcs   *routes.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	cfg := &config.Config{
		JWTSecret:            "router-test-secret",
		JWTTTL:               time.Hour,
		UploadDir:            t.TempDir(),
		UploadMaxBytes:       1 << 20,
		FrontendURL:          "https://office.example.com",
		SigningLinkTTL:       24 * time.Hour,
		DefaultAdminEmail:    "admin@oreoffice.kr",
		DefaultAdminPassword: "admin-pass-1",
	}
	require.NoError(t, config.Seed(db, cfg))

	svcs := routes.NewServices(db, cfg, utils.NewSMTPMailer(utils.SMTPConfig{}))
	_, err = svcs.Users.Create(services.CreateUserInput{Email: "viewer@oreoffice.kr", Password: "viewer-pass-1"})
	require.NoError(t, err)

	router := routes.SetupRouter(routes.NewControllers(svcs), svcs.Auth, []string{"*"})
	return &testServer{t: t, db: db, router: router, svcs: svcs}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "error.unauthorized", env.Error.Code)

	w, env = s.do(http.MethodGet, "/api/rooms", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.ErrInvalidToken.Code, env.Error.Code)

	w, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@oreoffice.kr", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.ErrInvalidCredentials.Code, env.Error.Code)

	token := s.login("admin@oreoffice.kr", "admin-pass-1")
	w, env = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, models.RoleAdmin, me.Role)
}

func TestViewerIsReadOnly(t *testing.T) {
	s := newTestServer(t)
	viewer := s.login("viewer@oreoffice.kr", "viewer-pass-1")

	w, env := s.do(http.MethodGet, "/api/rooms", viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = s.do(http.MethodPost, "/api/rooms", viewer, gin.H{"room_number": "101"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "error.forbidden", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/users", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoomErrorsMapToStatus(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@oreoffice.kr", "admin-pass-1")

	w, env := s.do(http.MethodPost, "/api/rooms", admin, gin.H{"room_number": "101", "room_type": "4인실", "floor": "1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	w, env = s.do(http.MethodPost, "/api/rooms", admin, gin.H{"room_number": "101"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.ErrRoomNumberTaken.Code, env.Error.Code)

	w, _ = s.do(http.MethodPost, "/api/rooms", admin, gin.H{"room_number": "102", "room_type": "펜트하우스"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/rooms/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, services.ErrRoomNotFound.Code, env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/rooms/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLockedPeriodIs423(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@oreoffice.kr", "admin-pass-1")
	require.NoError(t, s.db.Create(&models.Settlement{YearMonth: "2025-02", IsConfirmed: true}).Error)

	w, env := s.do(http.MethodPost, "/api/transactions", admin, gin.H{
		"type":             "지출",
		"category":         "공과금",
		"amount":           120000,
		"transaction_date": "2025-02-10",
	})
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, services.ErrPeriodIsLocked.Code, env.Error.Code)

	w, _ = s.do(http.MethodPost, "/api/transactions", admin, gin.H{
		"type":             "지출",
		"category":         "공과금",
		"amount":           120000,
		"transaction_date": "2025-03-10",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPublicSigningRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@oreoffice.kr", "admin-pass-1")

	room := models.Room{RoomNumber: "201", RoomType: models.RoomTypeDouble}
	require.NoError(t, s.svcs.Rooms.Create(&room))
	tenant := models.Tenant{CompanyName: "서명상사", Email: "sign@example.com"}
	require.NoError(t, s.svcs.Tenants.Create(&tenant))
	today := utils.TruncateDay(time.Now())
	contract, err := s.svcs.Contracts.Create(services.CreateContractInput{
		RoomID:      room.ID,
		TenantID:    tenant.ID,
		StartDate:   today,
		EndDate:     today.AddDate(1, 0, -1),
		MonthlyRent: decimal.NewFromInt(500000),
		PaymentDay:  10,
	})
	require.NoError(t, err)

	w, env := s.do(http.MethodPost, "/api/contract-signing/sessions", admin, gin.H{"contract_id": contract.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		ID          uint   `json:"ID"`
		Token       string `json:"token"`
		SigningLink string `json:"signing_link"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "https://office.example.com/contract-sign/"+session.Token, session.SigningLink)

	w, env = s.do(http.MethodGet, "/api/contract-signing/public/"+session.Token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view services.PublicSession
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "서명상사", view.CompanyName)
	assert.Equal(t, "201", view.RoomNumber)

	w, _ = s.do(http.MethodPost, "/api/contract-signing/public/"+session.Token+"/sign", "", gin.H{
		"signer_name": "김서명",
		"signature":   "data:image/png;base64,iVBORw0KGgo=",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodPost, "/api/contract-signing/public/"+session.Token+"/sign", "", gin.H{
		"signer_name": "김서명",
		"signature":   "data:image/png;base64,iVBORw0KGgo=",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error.invalidSigningTransition", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/contract-signing/public/doesnotexist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
