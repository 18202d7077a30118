package services

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploads_SaveReadDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUploadService(db, t.TempDir(), 1024)
	c := leaseFixture(t, db, "311", 0, 10)

	up, err := svc.Save(strings.NewReader("사업자등록증"), "../../etc/사업자등록증.PDF", "", UploadMeta{
		Category:   "사업자등록증",
		ContractID: uintPtr(c.ID),
		TenantID:   uintPtr(c.TenantID),
	})
	require.NoError(t, err)
	assert.Equal(t, "사업자등록증.PDF", up.OriginalName)
	assert.True(t, strings.HasSuffix(up.StoredName, ".pdf"))
	assert.Equal(t, "application/pdf", up.MimeType)
	assert.Equal(t, int64(len("사업자등록증")), up.Size)

	b, err := svc.Read(up.StoredName)
	require.NoError(t, err)
	assert.Equal(t, "사업자등록증", string(b))

	listed, err := svc.List(UploadFilter{TenantID: c.TenantID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	none, err := svc.List(UploadFilter{Category: "계약서"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, svc.Delete(up.ID))
	_, err = os.Stat(svc.Path(up.StoredName))
	assert.True(t, os.IsNotExist(err))
	_, err = svc.Get(up.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
	_, err = svc.Read(up.StoredName)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestUploads_Limits(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	svc := NewUploadService(db, dir, 8)

	_, err := svc.Save(strings.NewReader("123456789"), "big.txt", "text/plain", UploadMeta{})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "oversized file is removed")

	up, err := svc.Save(strings.NewReader("12345678"), "ok.txt", "text/plain", UploadMeta{})
	require.NoError(t, err)
	assert.Equal(t, "기타", up.Category)

	_, err = svc.Save(strings.NewReader("x"), "  ", "", UploadMeta{})
	assert.ErrorIs(t, err, ErrValidation)
}
