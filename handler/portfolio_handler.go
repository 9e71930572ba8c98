package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundchain/model"
	"github.com/fundchain/repository"
	"github.com/fundchain/service"
)

type PortfolioHandler struct {
	contracts *service.Contracts
	companies *repository.CompanyRepository
}

func NewPortfolioHandler(contracts *service.Contracts, companies *repository.CompanyRepository) *PortfolioHandler {
	return &PortfolioHandler{contracts: contracts, companies: companies}
}

type registerCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Industry    string `json:"industry"`
	Country     string `json:"country"`
	FoundedYear int    `json:"foundedYear"`
}

// POST /api/portfolio/companies
func (h *PortfolioHandler) RegisterCompany(c *gin.Context) {
	var req registerCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	registered, err := h.contracts.Portfolio().RegisterCompany(req.Name, req.Industry, req.Country, req.FoundedYear)
	if err != nil {
		writeError(c, err)
		return
	}
	row := &model.PortfolioCompany{
		ChainCompanyID: registered.CompanyID,
		Name:           req.Name,
		Industry:       req.Industry,
		Country:        req.Country,
		FoundedYear:    req.FoundedYear,
		Active:         true,
		TxHash:         registered.TxHash,
	}
	if err := h.companies.Create(row); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"companyId": registered.CompanyID, "txHash": registered.TxHash})
}

// GET /api/portfolio/companies
func (h *PortfolioHandler) ListCompanies(c *gin.Context) {
	page, size := pageParams(c)
	activeOnly := c.Query("active") == "true"
	list, total, err := h.companies.List(activeOnly, page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "records": list})
}

// GET /api/portfolio/companies/:id — live chain read.
func (h *PortfolioHandler) GetCompany(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	info, err := h.contracts.Portfolio().GetCompany(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type companyInvestmentRequest struct {
	FundID    uint64 `json:"fundId"`
	Amount    string `json:"amount" binding:"required"`
	EquityBP  uint32 `json:"equityBasisPoints" binding:"required"`
	Valuation string `json:"valuation" binding:"required"`
}

// POST /api/portfolio/companies/:id/investments
func (h *PortfolioHandler) RecordInvestment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req companyInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Portfolio().RecordInvestment(id, req.FundID, req.Amount, req.EquityBP, req.Valuation)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/portfolio/companies/:id/investments
func (h *PortfolioHandler) ListCompanyInvestments(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.contracts.Portfolio().CompanyInvestments(id)
	if err != nil {
		writeError(c, err)
		return
	}
	total, err := h.contracts.Portfolio().TotalInvestedIn(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalInvested": total, "records": list})
}

type valuationRequest struct {
	FundID    uint64 `json:"fundId"`
	Index     int    `json:"index"`
	Valuation string `json:"valuation" binding:"required"`
}

// POST /api/portfolio/companies/:id/valuation
func (h *PortfolioHandler) UpdateValuation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var req valuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.contracts.Portfolio().UpdateValuation(id, req.FundID, req.Index, req.Valuation)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/portfolio/companies/:id/deactivate
func (h *PortfolioHandler) DeactivateCompany(c *gin.Context) {
	h.setCompanyActive(c, false)
}

// POST /api/portfolio/companies/:id/reactivate
func (h *PortfolioHandler) ReactivateCompany(c *gin.Context) {
	h.setCompanyActive(c, true)
}

func (h *PortfolioHandler) setCompanyActive(c *gin.Context, active bool) {
	id, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}
	var res *service.TxResult
	if active {
		res, err = h.contracts.Portfolio().ReactivateCompany(id)
	} else {
		res, err = h.contracts.Portfolio().DeactivateCompany(id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.companies.SetActive(id, active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/portfolio/funds/:fundId — companies a fund holds, with equity.
func (h *PortfolioHandler) FundPortfolio(c *gin.Context) {
	fundID, err := pathID(c, "fundId")
	if err != nil {
		badRequest(c, err)
		return
	}
	companyIDs, err := h.contracts.Portfolio().FundPortfolio(fundID)
	if err != nil {
		writeError(c, err)
		return
	}
	holdings := make([]gin.H, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		equity, err := h.contracts.Portfolio().FundEquityIn(fundID, companyID)
		if err != nil {
			writeError(c, err)
			return
		}
		holdings = append(holdings, gin.H{"companyId": companyID, "equityBasisPoints": equity})
	}
	c.JSON(http.StatusOK, gin.H{"fundId": fundID, "holdings": holdings})
}
