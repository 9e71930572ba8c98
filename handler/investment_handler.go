package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fundchain/model"
	"github.com/fundchain/repository"
	"github.com/fundchain/service"
)

type InvestmentHandler struct {
	contracts   *service.Contracts
	investments *repository.InvestmentRepository
}

func NewInvestmentHandler(contracts *service.Contracts, investments *repository.InvestmentRepository) *InvestmentHandler {
	return &InvestmentHandler{contracts: contracts, investments: investments}
}

type recordInvestmentRequest struct {
	FundID      uint64 `json:"fundId"`
	Investor    string `json:"investor" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	TokenAmount string `json:"tokenAmount" binding:"required"`
	ExternalRef string `json:"externalRef"`
}

// POST /api/investments
func (h *InvestmentHandler) RecordInvestment(c *gin.Context) {
	var req recordInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	recorded, err := h.contracts.Investments().RecordInvestment(req.FundID, req.Investor, req.Amount, req.TokenAmount, req.ExternalRef)
	if err != nil {
		writeError(c, err)
		return
	}
	row := &model.Investment{
		LedgerFundID:      req.FundID,
		ChainInvestmentID: recorded.InvestmentID,
		InvestorAddress:   req.Investor,
		Amount:            req.Amount,
		TokenAmount:       req.TokenAmount,
		Status:            "Pending",
		ExternalRef:       req.ExternalRef,
		TxHash:            recorded.TxHash,
	}
	if err := h.investments.Create(row); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"fundId":       recorded.FundID,
		"investmentId": recorded.InvestmentID,
		"txHash":       recorded.TxHash,
	})
}

// POST /api/investments/:fundId/:id/confirm
func (h *InvestmentHandler) ConfirmInvestment(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Investments().ConfirmInvestment(fundID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.investments.UpdateStatus(fundID, id, "Confirmed", res.TxHash); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type cancelInvestmentRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// POST /api/investments/:fundId/:id/cancel
func (h *InvestmentHandler) CancelInvestment(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req cancelInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Investments().CancelInvestment(req.Caller, fundID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.investments.UpdateStatus(fundID, id, "Cancelled", res.TxHash); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/investments/:fundId/:id — live chain read.
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	info, err := h.contracts.Investments().GetInvestment(fundID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GET /api/investments?fundId=N or ?investor=0x...
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	page, size := pageParams(c)
	if investor := c.Query("investor"); investor != "" {
		list, total, err := h.investments.ListByInvestor(investor, page, size)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total, "records": list})
		return
	}
	fundID, err := strconv.ParseUint(c.Query("fundId"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := h.investments.ListByFund(fundID, page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "records": list})
}

type closeFundRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// POST /api/investments/funds/:fundId/close
func (h *InvestmentHandler) CloseFund(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req closeFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Investments().CloseFund(req.Caller, fundID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/investments/funds/:fundId — ledger fund state, live.
func (h *InvestmentHandler) GetLedgerFund(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	info, err := h.contracts.Investments().GetFund(fundID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GET /api/investments/investors/:address/funds
func (h *InvestmentHandler) InvestorFunds(c *gin.Context) {
	funds, err := h.contracts.Investments().InvestorFunds(c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"funds": funds})
}

// GET /api/investments/volume
func (h *InvestmentHandler) TotalVolume(c *gin.Context) {
	total, err := h.contracts.Investments().TotalVolume()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalVolume": total})
}
