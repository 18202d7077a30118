package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type TransactionController struct {
	TxSvc *services.TransactionService
}

func NewTransactionController(svc *services.TransactionService) *TransactionController {
	return &TransactionController{TxSvc: svc}
}

type createTransactionRequest struct {
	Type            models.TransactionType     `json:"type" binding:"required,txtype"`
	Category        models.TransactionCategory `json:"category" binding:"required"`
	Amount          decimal.Decimal            `json:"amount"`
	TransactionDate string                     `json:"transaction_date" binding:"required,date"`
	Description     string                     `json:"description"`
	PaymentMethod   string                     `json:"payment_method"`
	Memo            string                     `json:"memo"`
	ContractID      uint                       `json:"contract_id"`
	RoomID          uint                       `json:"room_id"`
	TenantID        uint                       `json:"tenant_id"`
}

// filter reads ?type=&category=&from=&to=&contract_id=&room_id=&tenant_id=
func (ctrl *TransactionController) filter(c *gin.Context) (services.TransactionFilter, bool) {
	f := services.TransactionFilter{
		Type:       models.TransactionType(c.Query("type")),
		Category:   models.TransactionCategory(c.Query("category")),
		ContractID: queryUint(c, "contract_id"),
		RoomID:     queryUint(c, "room_id"),
		TenantID:   queryUint(c, "tenant_id"),
	}
	var ok bool
	if f.From, ok = optionalDate(c, c.Query("from"), "from"); !ok {
		return f, false
	}
	if f.To, ok = optionalDate(c, c.Query("to"), "to"); !ok {
		return f, false
	}
	return f, true
}

func (ctrl *TransactionController) GetTransactions(c *gin.Context) {
	f, ok := ctrl.filter(c)
	if !ok {
		return
	}
	txs, err := ctrl.TxSvc.List(f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, txs)
}

// GetSummary (GET /api/transactions/summary)
func (ctrl *TransactionController) GetSummary(c *gin.Context) {
	f, ok := ctrl.filter(c)
	if !ok {
		return
	}
	sum, err := ctrl.TxSvc.Summary(f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, sum)
}

func (ctrl *TransactionController) GetTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := ctrl.TxSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, t)
}

func (ctrl *TransactionController) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	day, ok := requiredDate(c, req.TransactionDate, "거래일")
	if !ok {
		return
	}
	t := models.Transaction{
		Type:            req.Type,
		Category:        req.Category,
		Amount:          req.Amount,
		TransactionDate: day,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		Memo:            req.Memo,
		ContractID:      nonZero(req.ContractID),
		RoomID:          nonZero(req.RoomID),
		TenantID:        nonZero(req.TenantID),
	}
	if err := ctrl.TxSvc.Create(&t); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, t)
}

func (ctrl *TransactionController) UpdateTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		services.TransactionInput
		TransactionDate *string `json:"transaction_date" binding:"omitempty,date"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := req.TransactionInput
	if req.TransactionDate != nil {
		day, ok := requiredDate(c, *req.TransactionDate, "거래일")
		if !ok {
			return
		}
		in.TransactionDate = &day
	}
	t, err := ctrl.TxSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, t)
}

func (ctrl *TransactionController) DeleteTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.TxSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func nonZero(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
