package handler

import (
	"strconv"

	"hms-wallet-service/internal/adapter/http/dto"
	"hms-wallet-service/internal/adapter/http/middleware"
	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"
	"hms-wallet-service/pkg/apperror"
	"hms-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles all wallet ledger endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

// staffContext extracts the tenant scope and staff identity set by JWTAuth.
func staffContext(c *gin.Context) (hospitalID, userID uuid.UUID, ok bool) {
	hid, exists := c.Get(middleware.CtxHospitalID)
	if !exists {
		return uuid.Nil, uuid.Nil, false
	}
	uid, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return uuid.Nil, uuid.Nil, false
	}
	hospitalID, ok1 := hid.(uuid.UUID)
	userID, ok2 := uid.(uuid.UUID)
	return hospitalID, userID, ok1 && ok2
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	hospitalID, userID, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid patient_id"))
		return
	}

	detail, err := h.ledgerSvc.CreateWallet(c.Request.Context(), ports.CreateWalletRequest{
		HospitalID:     hospitalID,
		PatientID:      patientID,
		InitialBalance: req.InitialBalance,
		PerformedBy:    userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromWalletDetail(detail))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	hospitalID, _, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.WalletListParams{
		HospitalID: hospitalID,
		Search:     c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		status, valid := domain.ParseWalletStatus(raw)
		if !valid {
			response.Error(c, apperror.ErrInvalidStatus())
			return
		}
		params.Status = &status
	}

	wallets, err := h.ledgerSvc.ListWallets(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletListItem, 0, len(wallets))
	for i := range wallets {
		items = append(items, dto.WalletListItem{
			Wallet:  dto.FromWallet(&wallets[i].Wallet),
			Patient: dto.FromPatient(&wallets[i].Patient),
		})
	}
	response.OK(c, dto.WalletListResponse{Items: items, Total: len(items)})
}

// Get handles GET /api/v1/wallets/:id.
func (h *WalletHandler) Get(c *gin.Context) {
	hospitalID, _, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	detail, err := h.ledgerSvc.GetWallet(c.Request.Context(), hospitalID, walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromWalletDetail(detail))
}

// GetByPatient handles GET /api/v1/patients/:patientId/wallet.
func (h *WalletHandler) GetByPatient(c *gin.Context) {
	hospitalID, _, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid patient id"))
		return
	}

	detail, err := h.ledgerSvc.GetWalletByPatient(c.Request.Context(), hospitalID, patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromWalletDetail(detail))
}

// TopUp handles POST /api/v1/wallets/:id/topup.
func (h *WalletHandler) TopUp(c *gin.Context) {
	hospitalID, userID, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.TopUp(c.Request.Context(), ports.TopUpRequest{
		HospitalID:  hospitalID,
		WalletID:    walletID,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		Method:      req.PaymentMethod,
		PerformedBy: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromMutationResult(result))
}

// Deduct handles POST /api/v1/wallets/:id/deduct.
func (h *WalletHandler) Deduct(c *gin.Context) {
	hospitalID, userID, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.Deduct(c.Request.Context(), ports.DeductRequest{
		HospitalID:  hospitalID,
		WalletID:    walletID,
		Amount:      req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
		PerformedBy: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromMutationResult(result))
}

// SetStatus handles PATCH /api/v1/wallets/:id/status.
func (h *WalletHandler) SetStatus(c *gin.Context) {
	hospitalID, userID, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.ledgerSvc.SetStatus(c.Request.Context(), ports.SetStatusRequest{
		HospitalID:  hospitalID,
		WalletID:    walletID,
		Status:      req.Status,
		PerformedBy: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromWallet(wallet))
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	hospitalID, _, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.ledgerSvc.ListTransactions(c.Request.Context(), ports.ListTransactionsParams{
		HospitalID: hospitalID,
		WalletID:   walletID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Echo the limit/offset the service actually applied, not the raw query
	// values, so defaults and clamps show up in the paging metadata.
	resp := dto.TransactionListResponse{
		Items:  make([]dto.TransactionResponse, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if page.Limit > 0 {
		resp.TotalPages = (page.Total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, dto.FromTransaction(&page.Items[i]))
	}
	response.OK(c, resp)
}

// GetStats handles GET /api/v1/wallets/stats.
func (h *WalletHandler) GetStats(c *gin.Context) {
	hospitalID, _, ok := staffContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.ledgerSvc.GetStats(c.Request.Context(), hospitalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalWallets:      stats.TotalWallets,
		TotalBalance:      stats.TotalBalance,
		TotalTransactions: stats.TotalTransactions,
		TotalCredits:      stats.TotalCredits,
		TotalDebits:       stats.TotalDebits,
	})
}
