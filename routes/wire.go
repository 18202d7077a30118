package routes

import (
	"gorm.io/gorm"

	"oreoffice-backend/config"
	"oreoffice-backend/controllers"
	"oreoffice-backend/services"
)

// Services holds one instance of every service over a shared DB handle.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Rooms        *services.RoomService
	Tenants      *services.TenantService
	Contracts    *services.ContractService
	Transactions *services.TransactionService
	Billings     *services.BillingService
	Settlements  *services.SettlementService
	Dashboard    *services.DashboardService
	Uploads      *services.UploadService
	Templates    *services.TemplateService
	Signing      *services.SigningService
}

func NewServices(db *gorm.DB, cfg *config.Config, mailer services.Mailer) *Services {
	uploads := services.NewUploadService(db, cfg.UploadDir, cfg.UploadMaxBytes)
	return &Services{
		Auth:         services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		Users:        services.NewUserService(db),
		Rooms:        services.NewRoomService(db),
		Tenants:      services.NewTenantService(db),
		Contracts:    services.NewContractService(db),
		Transactions: services.NewTransactionService(db),
		Billings:     services.NewBillingService(db),
		Settlements:  services.NewSettlementService(db),
		Dashboard:    services.NewDashboardService(db),
		Uploads:      uploads,
		Templates:    services.NewTemplateService(db),
		Signing:      services.NewSigningService(db, mailer, uploads, cfg.FrontendURL, cfg.SigningLinkTTL),
	}
}

func NewControllers(s *Services) Controllers {
	return Controllers{
		Auth:         controllers.NewAuthController(s.Auth),
		Users:        controllers.NewUserController(s.Users),
		Rooms:        controllers.NewRoomController(s.Rooms),
		Tenants:      controllers.NewTenantController(s.Tenants),
		Contracts:    controllers.NewContractController(s.Contracts),
		Transactions: controllers.NewTransactionController(s.Transactions),
		Billings:     controllers.NewBillingController(s.Billings),
		Settlements:  controllers.NewSettlementController(s.Settlements),
		Dashboard:    controllers.NewDashboardController(s.Dashboard),
		Uploads:      controllers.NewUploadController(s.Uploads),
		Signing:      controllers.NewSigningController(s.Signing, s.Templates),
	}
}
