package controllers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"oreoffice-backend/middleware"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type UploadController struct {
	UploadSvc *services.UploadService
}

func NewUploadController(svc *services.UploadService) *UploadController {
	return &UploadController{UploadSvc: svc}
}

func (ctrl *UploadController) GetUploads(c *gin.Context) {
	list, err := ctrl.UploadSvc.List(services.UploadFilter{
		Category:   c.Query("category"),
		ContractID: queryUint(c, "contract_id"),
		TenantID:   queryUint(c, "tenant_id"),
		RoomID:     queryUint(c, "room_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// Upload (POST /api/uploads, multipart: file, category, contract_id, tenant_id, room_id)
func (ctrl *UploadController) Upload(c *gin.Context) {
	if ctrl.UploadSvc.MaxBytes > 0 {
		// leave room for the other multipart fields
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.UploadSvc.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "업로드할 파일이 없습니다.")
		return
	}
	if ctrl.UploadSvc.MaxBytes > 0 && fh.Size > ctrl.UploadSvc.MaxBytes {
		respondError(c, services.ErrFileTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	up, err := ctrl.UploadSvc.Save(f, fh.Filename, fh.Header.Get("Content-Type"), services.UploadMeta{
		Category:   c.PostForm("category"),
		ContractID: formUint(c, "contract_id"),
		TenantID:   formUint(c, "tenant_id"),
		RoomID:     formUint(c, "room_id"),
		UploadedBy: nonZero(middleware.UserID(c)),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, up)
}

// Download (GET /api/uploads/:id/download) streams the file as an attachment.
func (ctrl *UploadController) Download(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	up, err := ctrl.UploadSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(up.OriginalName)))
	c.Header("Content-Type", up.MimeType)
	c.File(ctrl.UploadSvc.Path(up.StoredName))
}

func (ctrl *UploadController) DeleteUpload(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.UploadSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func formUint(c *gin.Context, key string) *uint {
	var n uint
	if _, err := fmt.Sscanf(c.PostForm(key), "%d", &n); err != nil {
		return nil
	}
	return nonZero(n)
}
