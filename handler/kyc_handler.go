package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fundchain/model"
	"github.com/fundchain/repository"
	"github.com/fundchain/service"
)

type KYCHandler struct {
	contracts *service.Contracts
	kyc       *repository.KYCRepository
	users     *repository.UserRepository
}

func NewKYCHandler(contracts *service.Contracts, kyc *repository.KYCRepository, users *repository.UserRepository) *KYCHandler {
	return &KYCHandler{contracts: contracts, kyc: kyc, users: users}
}

type submitKYCRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Country       uint16 `json:"country" binding:"required"`
	Accredited    bool   `json:"accredited"`
	DocumentURI   string `json:"documentUri"`
	Email         string `json:"email"`
}

// POST /api/kyc/submit
func (h *KYCHandler) Submit(c *gin.Context) {
	var req submitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub := &model.KYCSubmission{
		Reference:     uuid.NewString(),
		WalletAddress: req.WalletAddress,
		Country:       req.Country,
		Accredited:    req.Accredited,
		DocumentURI:   req.DocumentURI,
		Status:        "pending",
	}
	if req.Email != "" {
		if user, err := h.users.FindByEmail(req.Email); err == nil {
			sub.UserID = user.ID
		}
	}
	if err := h.kyc.Create(sub); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reference": sub.Reference, "status": sub.Status})
}

// GET /api/kyc/:reference
func (h *KYCHandler) Get(c *gin.Context) {
	sub, err := h.kyc.FindByReference(c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// GET /api/kyc/pending
func (h *KYCHandler) ListPending(c *gin.Context) {
	page, size := pageParams(c)
	list, total, err := h.kyc.ListByStatus("pending", page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "records": list})
}

// POST /api/kyc/:reference/approve
// Approval is the on-chain onboarding: identity registration plus the KYC
// claim (and the accredited claim when flagged) in one transaction.
func (h *KYCHandler) Approve(c *gin.Context) {
	sub, err := h.kyc.FindByReference(c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	if sub.Status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "submission already " + sub.Status})
		return
	}

	res, err := h.contracts.Identity().OnboardInvestor(sub.WalletAddress, sub.Country, sub.Accredited)
	if err != nil {
		writeError(c, err)
		return
	}

	sub.Status = "approved"
	sub.TxHash = res.TxHash
	if err := h.kyc.Save(sub); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": sub.Reference, "status": sub.Status, "txHash": res.TxHash})
}

type rejectKYCRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /api/kyc/:reference/reject
func (h *KYCHandler) Reject(c *gin.Context) {
	sub, err := h.kyc.FindByReference(c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	if sub.Status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "submission already " + sub.Status})
		return
	}
	var req rejectKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub.Status = "rejected"
	sub.RejectReason = req.Reason
	if err := h.kyc.Save(sub); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": sub.Reference, "status": sub.Status})
}

// GET /api/kyc/status/:address — live chain verification state.
func (h *KYCHandler) Status(c *gin.Context) {
	address := c.Param("address")
	verified, err := h.contracts.Identity().IsVerified(address)
	if err != nil {
		writeError(c, err)
		return
	}
	if !verified {
		c.JSON(http.StatusOK, gin.H{"address": address, "verified": false})
		return
	}
	accredited, err := h.contracts.Identity().HasClaim(address, 1)
	if err != nil {
		writeError(c, err)
		return
	}
	country, err := h.contracts.Identity().GetCountry(address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":    address,
		"verified":   true,
		"accredited": accredited,
		"country":    country,
	})
}
