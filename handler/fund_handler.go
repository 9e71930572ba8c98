package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundchain/model"
	"github.com/fundchain/repository"
	"github.com/fundchain/service"
)

type FundHandler struct {
	contracts *service.Contracts
	funds     *repository.FundRepository
}

func NewFundHandler(contracts *service.Contracts, funds *repository.FundRepository) *FundHandler {
	return &FundHandler{contracts: contracts, funds: funds}
}

type createFundRequest struct {
	GP                string `json:"gp" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Symbol            string `json:"symbol" binding:"required"`
	TargetAmount      string `json:"targetAmount" binding:"required"`
	MinimumInvestment string `json:"minimumInvestment" binding:"required"`
}

// POST /api/funds
// Creates the fund on the factory and registers it with the investment
// ledger, then caches the row. The two chain ids are linked only here, by
// the token address both sides share.
func (h *FundHandler) CreateFund(c *gin.Context) {
	var req createFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.contracts.Funds().CreateFund(req.GP, req.Name, req.Symbol, req.TargetAmount, req.MinimumInvestment)
	if err != nil {
		writeError(c, err)
		return
	}
	registered, err := h.contracts.Investments().RegisterFund(created.TokenAddress, req.GP, req.TargetAmount, req.MinimumInvestment)
	if err != nil {
		writeError(c, err)
		return
	}

	row := &model.Fund{
		ChainFundID:       created.FundID,
		LedgerFundID:      &registered.FundID,
		TokenAddress:      created.TokenAddress,
		GPAddress:         req.GP,
		Name:              req.Name,
		Symbol:            req.Symbol,
		TargetAmount:      req.TargetAmount,
		MinimumInvestment: req.MinimumInvestment,
		Active:            true,
		TxHash:            created.TxHash,
	}
	if err := h.funds.Create(row); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"fundId":       created.FundID,
		"ledgerFundId": registered.FundID,
		"tokenAddress": created.TokenAddress,
		"txHash":       created.TxHash,
	})
}

// GET /api/funds
func (h *FundHandler) ListFunds(c *gin.Context) {
	page, size := pageParams(c)
	activeOnly := c.Query("active") == "true"
	list, total, err := h.funds.List(activeOnly, page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "records": list})
}

// GET /api/funds/:id — live chain read, authoritative.
func (h *FundHandler) GetFund(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	info, err := h.contracts.Funds().GetFund(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type gpRequest struct {
	Address string `json:"address" binding:"required"`
}

// POST /api/funds/gps/approve
func (h *FundHandler) ApproveGP(c *gin.Context) {
	var req gpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Funds().ApproveGP(req.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type batchGPRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
}

// POST /api/funds/gps/batch-approve
func (h *FundHandler) BatchApproveGPs(c *gin.Context) {
	var req batchGPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Funds().BatchApproveGPs(req.Addresses)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/funds/gps/revoke
func (h *FundHandler) RevokeGP(c *gin.Context) {
	var req gpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Funds().RevokeGP(req.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type fundActionRequest struct {
	GP string `json:"gp" binding:"required"`
}

// POST /api/funds/:id/deactivate
func (h *FundHandler) DeactivateFund(c *gin.Context) {
	h.setFundActive(c, false)
}

// POST /api/funds/:id/reactivate
func (h *FundHandler) ReactivateFund(c *gin.Context) {
	h.setFundActive(c, true)
}

func (h *FundHandler) setFundActive(c *gin.Context, active bool) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req fundActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var res *service.TxResult
	if active {
		res, err = h.contracts.Funds().ReactivateFund(req.GP, id)
	} else {
		res, err = h.contracts.Funds().DeactivateFund(req.GP, id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.funds.SetActive(id, active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
