package services

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"oreoffice-backend/models"
)

// UploadService keeps files on local disk under Dir and their metadata in the
// uploads table.
type UploadService struct {
	DB       *gorm.DB
	Dir      string
	MaxBytes int64
}

func NewUploadService(db *gorm.DB, dir string, maxBytes int64) *UploadService {
	return &UploadService{DB: db, Dir: dir, MaxBytes: maxBytes}
}

// WithTx returns a copy that records uploads through tx.
func (s *UploadService) WithTx(tx *gorm.DB) *UploadService {
	c := *s
	c.DB = tx
	return &c
}

// Discard removes a stored file whose record was never committed.
func (s *UploadService) Discard(storedName string) {
	if err := os.Remove(s.Path(storedName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.L().Warn("failed to remove stored file", zap.String("file", storedName), zap.Error(err))
	}
}

type UploadMeta struct {
	Category   string
	ContractID *uint
	TenantID   *uint
	RoomID     *uint
	UploadedBy *uint
}

type UploadFilter struct {
	Category   string
	ContractID uint
	TenantID   uint
	RoomID     uint
}

var ErrFileTooLarge = newError(ErrValidation, "error.fileTooLarge", "파일 크기가 허용 한도를 초과했습니다.")

// Save streams r to disk under a random name and records it.
func (s *UploadService) Save(r io.Reader, originalName, mimeType string, meta UploadMeta) (*models.Upload, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if originalName == "." || originalName == string(filepath.Separator) || originalName == "" {
		return nil, validationError("파일 이름이 올바르지 않습니다.")
	}
	if meta.Category == "" {
		meta.Category = "기타"
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	stored := uuid.NewString() + ext
	path := filepath.Join(s.Dir, stored)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if s.MaxBytes > 0 && n > s.MaxBytes {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	up := &models.Upload{
		Category:     meta.Category,
		OriginalName: originalName,
		StoredName:   stored,
		MimeType:     mimeType,
		Size:         n,
		ContractID:   meta.ContractID,
		TenantID:     meta.TenantID,
		RoomID:       meta.RoomID,
		UploadedBy:   meta.UploadedBy,
	}
	if err := s.DB.Create(up).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	zap.L().Info("file uploaded", zap.Uint("upload_id", up.ID), zap.String("name", originalName), zap.Int64("bytes", n))
	return up, nil
}

func (s *UploadService) List(f UploadFilter) ([]models.Upload, error) {
	q := s.DB.Model(&models.Upload{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ContractID > 0 {
		q = q.Where("contract_id = ?", f.ContractID)
	}
	if f.TenantID > 0 {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	if f.RoomID > 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	var out []models.Upload
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return out, nil
}

func (s *UploadService) Get(id uint) (*models.Upload, error) {
	var up models.Upload
	if err := s.DB.First(&up, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, fmt.Errorf("failed to load upload: %w", err)
	}
	return &up, nil
}

// Path returns the on-disk location of a stored file.
func (s *UploadService) Path(storedName string) string {
	return filepath.Join(s.Dir, filepath.Base(storedName))
}

func (s *UploadService) Read(storedName string) ([]byte, error) {
	b, err := os.ReadFile(s.Path(storedName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrUploadNotFound
	}
	return b, err
}

// Delete removes the record and then the file. A file already gone is not an error.
func (s *UploadService) Delete(id uint) error {
	up, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(up).Error; err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	s.Discard(up.StoredName)
	return nil
}
