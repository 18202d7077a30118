package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type BillingController struct {
	BillingSvc *services.BillingService
}

func NewBillingController(svc *services.BillingService) *BillingController {
	return &BillingController{BillingSvc: svc}
}

type generateRequest struct {
	YearMonth string `json:"year_month" binding:"required,yearmonth"`
}

type confirmPaymentRequest struct {
	PaidAt        string           `json:"paid_at" binding:"omitempty,date"`
	PaidAmount    *decimal.Decimal `json:"paid_amount"`
	PaymentMethod string           `json:"payment_method"`
	Memo          string           `json:"memo"`
}

type taxInvoiceRequest struct {
	TaxInvoiceNumber string `json:"tax_invoice_number"`
	IssuedAt         string `json:"issued_at" binding:"omitempty,date"`
}

type updateBillingRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	DueDate *string          `json:"due_date" binding:"omitempty,date"`
	Memo    *string          `json:"memo"`
}

// GetBillings (GET /api/billings?year_month=&status=&tenant_id=&room_id=&contract_id=)
func (ctrl *BillingController) GetBillings(c *gin.Context) {
	billings, err := ctrl.BillingSvc.List(services.BillingFilter{
		YearMonth:  c.Query("year_month"),
		Status:     models.BillingStatus(c.Query("status")),
		ContractID: queryUint(c, "contract_id"),
		RoomID:     queryUint(c, "room_id"),
		TenantID:   queryUint(c, "tenant_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, billings)
}

func (ctrl *BillingController) GetBilling(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := ctrl.BillingSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// Generate (POST /api/billings/generate)
func (ctrl *BillingController) Generate(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := ctrl.BillingSvc.Generate(req.YearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// RefreshOverdue (POST /api/billings/refresh-overdue)
func (ctrl *BillingController) RefreshOverdue(c *gin.Context) {
	n, err := ctrl.BillingSvc.RefreshOverdue(ctrl.BillingSvc.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": n})
}

func (ctrl *BillingController) UpdateBilling(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateBillingRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.BillingUpdate{Amount: req.Amount, Memo: req.Memo}
	if req.DueDate != nil {
		due, ok := requiredDate(c, *req.DueDate, "납부기한")
		if !ok {
			return
		}
		in.DueDate = &due
	}
	b, err := ctrl.BillingSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// CancelBilling (DELETE /api/billings/:id) voids the billing; a paid one is refused.
func (ctrl *BillingController) CancelBilling(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if c.Query("hard") == "true" {
		if err := ctrl.BillingSvc.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
		return
	}
	b, err := ctrl.BillingSvc.Cancel(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (ctrl *BillingController) paymentInput(c *gin.Context, req confirmPaymentRequest) (services.PaymentInput, bool) {
	in := services.PaymentInput{
		PaidAmount:    req.PaidAmount,
		PaymentMethod: req.PaymentMethod,
		Memo:          req.Memo,
	}
	at, ok := optionalDate(c, req.PaidAt, "입금일")
	if !ok {
		return in, false
	}
	if at != nil {
		in.PaidAt = *at
	}
	return in, true
}

// ConfirmPayment (POST /api/billings/:id/confirm-payment)
func (ctrl *BillingController) ConfirmPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req confirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := ctrl.paymentInput(c, req)
	if !ok {
		return
	}
	b, err := ctrl.BillingSvc.ConfirmPayment(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// CancelPayment (POST /api/billings/:id/cancel-payment)
func (ctrl *BillingController) CancelPayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := ctrl.BillingSvc.CancelPayment(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// IssueTaxInvoice (POST /api/billings/:id/tax-invoice)
func (ctrl *BillingController) IssueTaxInvoice(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req taxInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	issuedAt, ok := optionalDate(c, req.IssuedAt, "발행일")
	if !ok {
		return
	}
	b, err := ctrl.BillingSvc.IssueTaxInvoice(id, services.TaxInvoiceInput{
		Number:   req.TaxInvoiceNumber,
		IssuedAt: issuedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// BulkConfirmPayment (POST /api/billings/bulk/confirm-payment)
func (ctrl *BillingController) BulkConfirmPayment(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
		confirmPaymentRequest
	}
	if !bindJSON(c, &req) {
		return
	}
	in, ok := ctrl.paymentInput(c, req.confirmPaymentRequest)
	if !ok {
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BillingSvc.BulkConfirmPayment(req.IDs, in))
}

// BulkIssueTaxInvoice (POST /api/billings/bulk/tax-invoice)
func (ctrl *BillingController) BulkIssueTaxInvoice(c *gin.Context) {
	var req struct {
		IDs      []uint `json:"ids" binding:"required,min=1"`
		IssuedAt string `json:"issued_at" binding:"omitempty,date"`
	}
	if !bindJSON(c, &req) {
		return
	}
	issuedAt, ok := optionalDate(c, req.IssuedAt, "발행일")
	if !ok {
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BillingSvc.BulkIssueTaxInvoice(req.IDs, issuedAt))
}
