package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"oreoffice-backend/models"
	"oreoffice-backend/services"
	"oreoffice-backend/utils"
)

type ContractController struct {
	ContractSvc *services.ContractService
}

func NewContractController(svc *services.ContractService) *ContractController {
	return &ContractController{ContractSvc: svc}
}

type createContractRequest struct {
	RoomID            uint             `json:"room_id" binding:"required"`
	TenantID          uint             `json:"tenant_id" binding:"required"`
	StartDate         string           `json:"start_date" binding:"required,date"`
	EndDate           string           `json:"end_date" binding:"required,date"`
	MonthlyRent       decimal.Decimal  `json:"monthly_rent"`
	MonthlyRentVAT    *decimal.Decimal `json:"monthly_rent_vat"`
	Deposit           decimal.Decimal  `json:"deposit"`
	ManagementFee     decimal.Decimal  `json:"management_fee"`
	PaymentDay        int              `json:"payment_day" binding:"omitempty,min=1,max=31"`
	RentFreeStart     string           `json:"rent_free_start" binding:"omitempty,date"`
	RentFreeEnd       string           `json:"rent_free_end" binding:"omitempty,date"`
	Memo              string           `json:"memo"`
	DepositReceived   bool             `json:"deposit_received"`
	DepositReceivedAt string           `json:"deposit_received_at" binding:"omitempty,date"`
}

type updateContractRequest struct {
	EndDate        *string          `json:"end_date" binding:"omitempty,date"`
	MonthlyRent    *decimal.Decimal `json:"monthly_rent"`
	MonthlyRentVAT *decimal.Decimal `json:"monthly_rent_vat"`
	Deposit        *decimal.Decimal `json:"deposit"`
	ManagementFee  *decimal.Decimal `json:"management_fee"`
	PaymentDay     *int             `json:"payment_day" binding:"omitempty,min=1,max=31"`
	RentFreeStart  *string          `json:"rent_free_start"`
	RentFreeEnd    *string          `json:"rent_free_end"`
	Memo           *string          `json:"memo"`
}

type terminateRequest struct {
	TerminationType   models.TerminationType `json:"termination_type" binding:"required"`
	TerminatedAt      string                 `json:"terminated_at" binding:"omitempty,date"`
	TerminationReason string                 `json:"termination_reason"`
}

// GetContracts (GET /api/contracts?active=&room_id=&tenant_id=)
func (ctrl *ContractController) GetContracts(c *gin.Context) {
	f := services.ContractFilter{
		RoomID:   queryUint(c, "room_id"),
		TenantID: queryUint(c, "tenant_id"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "active 값은 true 또는 false여야 합니다.")
			return
		}
		f.Active = &active
	}
	contracts, err := ctrl.ContractSvc.List(f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, contracts)
}

// GetExpiring (GET /api/contracts/expiring?days=30)
func (ctrl *ContractController) GetExpiring(c *gin.Context) {
	contracts, err := ctrl.ContractSvc.Expiring(queryInt(c, "days", 30))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, contracts)
}

func (ctrl *ContractController) GetContract(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	contract, err := ctrl.ContractSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, contract)
}

func (ctrl *ContractController) CreateContract(c *gin.Context) {
	var req createContractRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.CreateContractInput{
		RoomID:          req.RoomID,
		TenantID:        req.TenantID,
		MonthlyRent:     req.MonthlyRent,
		MonthlyRentVAT:  req.MonthlyRentVAT,
		Deposit:         req.Deposit,
		ManagementFee:   req.ManagementFee,
		PaymentDay:      req.PaymentDay,
		Memo:            req.Memo,
		DepositReceived: req.DepositReceived,
	}
	var ok bool
	if in.StartDate, ok = requiredDate(c, req.StartDate, "계약 시작일"); !ok {
		return
	}
	if in.EndDate, ok = requiredDate(c, req.EndDate, "계약 종료일"); !ok {
		return
	}
	if in.RentFreeStart, ok = optionalDate(c, req.RentFreeStart, "렌트프리 시작일"); !ok {
		return
	}
	if in.RentFreeEnd, ok = optionalDate(c, req.RentFreeEnd, "렌트프리 종료일"); !ok {
		return
	}
	if in.DepositReceivedAt, ok = optionalDate(c, req.DepositReceivedAt, "보증금 입금일"); !ok {
		return
	}

	contract, err := ctrl.ContractSvc.Create(in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, contract)
}

func (ctrl *ContractController) UpdateContract(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateContractRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.UpdateContractInput{
		MonthlyRent:    req.MonthlyRent,
		MonthlyRentVAT: req.MonthlyRentVAT,
		Deposit:        req.Deposit,
		ManagementFee:  req.ManagementFee,
		PaymentDay:     req.PaymentDay,
		Memo:           req.Memo,
	}
	if req.EndDate != nil {
		end, ok := requiredDate(c, *req.EndDate, "계약 종료일")
		if !ok {
			return
		}
		in.EndDate = &end
	}
	// an explicit empty pair clears the rent-free window
	if req.RentFreeStart != nil && req.RentFreeEnd != nil && *req.RentFreeStart == "" && *req.RentFreeEnd == "" {
		in.ClearRentFree = true
	} else {
		if req.RentFreeStart != nil {
			if in.RentFreeStart, ok = optionalDate(c, *req.RentFreeStart, "렌트프리 시작일"); !ok {
				return
			}
		}
		if req.RentFreeEnd != nil {
			if in.RentFreeEnd, ok = optionalDate(c, *req.RentFreeEnd, "렌트프리 종료일"); !ok {
				return
			}
		}
	}

	contract, err := ctrl.ContractSvc.Update(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, contract)
}

func (ctrl *ContractController) DeleteContract(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := ctrl.ContractSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

// TerminateContract (POST /api/contracts/:id/terminate)
func (ctrl *ContractController) TerminateContract(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req terminateRequest
	if !bindJSON(c, &req) {
		return
	}
	at, ok := optionalDate(c, req.TerminatedAt, "종료일")
	if !ok {
		return
	}
	in := services.TerminateInput{Type: req.TerminationType, Reason: req.TerminationReason}
	if at != nil {
		in.TerminatedAt = *at
	}
	result, err := ctrl.ContractSvc.Terminate(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}
