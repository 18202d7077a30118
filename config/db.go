package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"oreoffice-backend/models"
)

const defaultTemplateContent = `사무실 임대차 계약서

임대인(이하 "갑")과 임차인 {{company_name}} (대표자 {{representative_name}}, 사업자등록번호 {{business_number}}, 이하 "을")은 다음과 같이 임대차 계약을 체결한다.

제1조 (목적물) 호실: {{room_number}}
제2조 (계약기간) {{start_date}} 부터 {{end_date}} 까지
제3조 (보증금) 금 {{deposit}} 원
제4조 (월 임대료) 금 {{monthly_rent}} 원 (부가세 포함 {{monthly_rent_vat}} 원), 관리비 {{management_fee}} 원
제5조 (지급일) 매월 {{payment_day}} 일
제6조 (중도해지) 을이 계약기간 중 해지하는 경우 보증금은 위약금으로 귀속된다.
제7조 (만기종료) 계약 만료 시 보증금은 최종월 임대료와 상계한다.

작성일: {{today}}`

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN(raw string) (string, error) {
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "oreoffice")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func resolvePostgresDSN(raw string) string {
	if raw != "" {
		return raw
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		envOrDefault("DB_HOST", "127.0.0.1"),
		envOrDefault("DB_PORT", "5432"),
		envOrDefault("DB_USER", "postgres"),
		envOrDefault("DB_PASS", ""),
		envOrDefault("DB_NAME", "oreoffice"),
		envOrDefault("DB_SSLMODE", "disable"),
	)
}

func dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.Open(resolvePostgresDSN(cfg.DatabaseURL)), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		dsn, err := resolveMySQLDSN(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	}
}

func gormLogLevel(raw string) logger.LogLevel {
	switch strings.ToLower(raw) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Connect opens the database configured by cfg.
func Connect(cfg *Config) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg.DBLogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{Logger: newLogger, TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	zap.L().Info("database connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// Migrate creates or updates every table in parent -> child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Seed ensures a first admin account and a default contract template exist.
func Seed(db *gorm.DB, cfg *Config) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		password := cfg.DefaultAdminPassword
		if password == "" {
			password = "admin1234"
			zap.L().Warn("DEFAULT_ADMIN_PASSWORD not set; seeding admin with the built-in password, change it after first login",
				zap.String("email", cfg.DefaultAdminEmail))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		admin := models.User{
			Email:    cfg.DefaultAdminEmail,
			Name:     "관리자",
			Password: string(hash),
			Role:     models.RoleAdmin,
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create default admin: %w", err)
		}
		zap.L().Info("default admin seeded", zap.String("email", admin.Email))
	}

	var tplCount int64
	if err := db.Model(&models.ContractTemplate{}).Count(&tplCount).Error; err != nil {
		return err
	}
	if tplCount == 0 {
		tpl := models.ContractTemplate{
			Name:      "기본 사무실 임대차 계약서",
			Content:   defaultTemplateContent,
			IsDefault: true,
		}
		if err := db.Create(&tpl).Error; err != nil {
			return fmt.Errorf("create default template: %w", err)
		}
		zap.L().Info("default contract template seeded")
	}
	return nil
}
