package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundchain/service"
)

type TokenHandler struct {
	contracts *service.Contracts
}

func NewTokenHandler(contracts *service.Contracts) *TokenHandler {
	return &TokenHandler{contracts: contracts}
}

type mintRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// POST /api/tokens/:address/mint
func (h *TokenHandler) Mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().Mint(c.Param("address"), req.To, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type batchMintRequest struct {
	Tos     []string `json:"tos" binding:"required"`
	Amounts []string `json:"amounts" binding:"required"`
}

// POST /api/tokens/:address/batch-mint
func (h *TokenHandler) BatchMint(c *gin.Context) {
	var req batchMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().BatchMint(c.Param("address"), req.Tos, req.Amounts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type batchTransferRequest struct {
	From    string   `json:"from" binding:"required"`
	Tos     []string `json:"tos" binding:"required"`
	Amounts []string `json:"amounts" binding:"required"`
}

// POST /api/tokens/:address/batch-transfer
func (h *TokenHandler) BatchTransfer(c *gin.Context) {
	var req batchTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().BatchTransfer(c.Param("address"), req.From, req.Tos, req.Amounts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type transferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// POST /api/tokens/:address/transfer
func (h *TokenHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().Transfer(c.Param("address"), req.From, req.To, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/tokens/:address/forced-transfer
func (h *TokenHandler) ForcedTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().ForcedTransfer(c.Param("address"), req.From, req.To, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type accountRequest struct {
	Account string `json:"account" binding:"required"`
}

// POST /api/tokens/:address/freeze
func (h *TokenHandler) FreezeAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().FreezeAccount(c.Param("address"), req.Account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/tokens/:address/unfreeze
func (h *TokenHandler) UnfreezeAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().UnfreezeAccount(c.Param("address"), req.Account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type partialFreezeRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// POST /api/tokens/:address/freeze-partial
func (h *TokenHandler) FreezePartialTokens(c *gin.Context) {
	var req partialFreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().FreezePartialTokens(c.Param("address"), req.Account, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/tokens/:address/unfreeze-partial
func (h *TokenHandler) UnfreezePartialTokens(c *gin.Context) {
	var req partialFreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().UnfreezePartialTokens(c.Param("address"), req.Account, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type recoveryRequest struct {
	Lost        string `json:"lost" binding:"required"`
	Replacement string `json:"replacement" binding:"required"`
}

// POST /api/tokens/:address/recovery
func (h *TokenHandler) RecoveryTransfer(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Tokens().RecoveryTransfer(c.Param("address"), req.Lost, req.Replacement)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/tokens/:address/balance?holder=0x...
func (h *TokenHandler) Balance(c *gin.Context) {
	bal, err := h.contracts.Tokens().BalanceOf(c.Param("address"), c.Query("holder"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// GET /api/tokens/:address/check-transfer?from=&to=&amount=
// Pre-validation the frontend calls before submitting; a denial comes back
// 200 with allowed=false and the denial reason.
func (h *TokenHandler) CheckTransfer(c *gin.Context) {
	check, err := h.contracts.Tokens().CheckTransfer(c.Param("address"), c.Query("from"), c.Query("to"), c.Query("amount"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

type complianceConfigRequest struct {
	Restricted         *bool   `json:"restricted"`
	MaxHolders         *int    `json:"maxHolders"`
	MinHoldingPeriod   *int64  `json:"minHoldingPeriodSeconds"`
	AccreditedRequired *bool   `json:"accreditedRequired"`
	AllowCountry       *uint16 `json:"allowCountry"`
	DisallowCountry    *uint16 `json:"disallowCountry"`
}

// PUT /api/tokens/:address/compliance — partial update, each present field
// is one owner transaction.
func (h *TokenHandler) UpdateCompliance(c *gin.Context) {
	var req complianceConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	address := c.Param("address")
	compliance := h.contracts.Compliance()

	apply := []func() (*service.TxResult, error){}
	if req.Restricted != nil {
		apply = append(apply, func() (*service.TxResult, error) { return compliance.SetRestricted(address, *req.Restricted) })
	}
	if req.MaxHolders != nil {
		apply = append(apply, func() (*service.TxResult, error) { return compliance.SetMaxHolders(address, *req.MaxHolders) })
	}
	if req.MinHoldingPeriod != nil {
		apply = append(apply, func() (*service.TxResult, error) {
			return compliance.SetMinHoldingPeriod(address, *req.MinHoldingPeriod)
		})
	}
	if req.AccreditedRequired != nil {
		apply = append(apply, func() (*service.TxResult, error) {
			return compliance.SetAccreditedRequired(address, *req.AccreditedRequired)
		})
	}
	if req.AllowCountry != nil {
		apply = append(apply, func() (*service.TxResult, error) { return compliance.AllowCountry(address, *req.AllowCountry) })
	}
	if req.DisallowCountry != nil {
		apply = append(apply, func() (*service.TxResult, error) { return compliance.DisallowCountry(address, *req.DisallowCountry) })
	}

	var last *service.TxResult
	for _, fn := range apply {
		res, err := fn()
		if err != nil {
			writeError(c, err)
			return
		}
		last = res
	}
	cfg, err := compliance.GetConfig(address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg, "lastTx": last})
}

// GET /api/tokens/:address/compliance
func (h *TokenHandler) GetCompliance(c *gin.Context) {
	cfg, err := h.contracts.Compliance().GetConfig(c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
