package router

import (
	"github.com/fundchain/handler"
	"github.com/gin-gonic/gin"
)

func SetupRouter(
	fundHandler *handler.FundHandler,
	investmentHandler *handler.InvestmentHandler,
	kycHandler *handler.KYCHandler,
	portfolioHandler *handler.PortfolioHandler,
	tokenHandler *handler.TokenHandler,
) *gin.Engine {
	r := gin.Default()

	funds := r.Group("/api/funds")
	{
		funds.POST("", fundHandler.CreateFund)
		funds.GET("", fundHandler.ListFunds)
		funds.GET("/:id", fundHandler.GetFund)
		funds.POST("/:id/deactivate", fundHandler.DeactivateFund)
		funds.POST("/:id/reactivate", fundHandler.ReactivateFund)
		funds.POST("/gps/approve", fundHandler.ApproveGP)
		funds.POST("/gps/batch-approve", fundHandler.BatchApproveGPs)
		funds.POST("/gps/revoke", fundHandler.RevokeGP)
	}

	investments := r.Group("/api/investments")
	{
		investments.POST("", investmentHandler.RecordInvestment)
		investments.GET("", investmentHandler.ListInvestments)
		investments.GET("/volume", investmentHandler.TotalVolume)
		investments.GET("/:fundId/:id", investmentHandler.GetInvestment)
		investments.POST("/:fundId/:id/confirm", investmentHandler.ConfirmInvestment)
		investments.POST("/:fundId/:id/cancel", investmentHandler.CancelInvestment)
		investments.GET("/funds/:fundId", investmentHandler.GetLedgerFund)
		investments.POST("/funds/:fundId/close", investmentHandler.CloseFund)
		investments.GET("/investors/:address/funds", investmentHandler.InvestorFunds)
	}

	kyc := r.Group("/api/kyc")
	{
		kyc.POST("/submit", kycHandler.Submit)
		kyc.GET("/pending", kycHandler.ListPending)
		kyc.GET("/status/:address", kycHandler.Status)
		kyc.GET("/:reference", kycHandler.Get)
		kyc.POST("/:reference/approve", kycHandler.Approve)
		kyc.POST("/:reference/reject", kycHandler.Reject)
	}

	portfolio := r.Group("/api/portfolio")
	{
		portfolio.POST("/companies", portfolioHandler.RegisterCompany)
		portfolio.GET("/companies", portfolioHandler.ListCompanies)
		portfolio.GET("/companies/:id", portfolioHandler.GetCompany)
		portfolio.POST("/companies/:id/investments", portfolioHandler.RecordInvestment)
		portfolio.GET("/companies/:id/investments", portfolioHandler.ListCompanyInvestments)
		portfolio.POST("/companies/:id/valuation", portfolioHandler.UpdateValuation)
		portfolio.POST("/companies/:id/deactivate", portfolioHandler.DeactivateCompany)
		portfolio.POST("/companies/:id/reactivate", portfolioHandler.ReactivateCompany)
		portfolio.GET("/funds/:fundId", portfolioHandler.FundPortfolio)
	}

	tokens := r.Group("/api/tokens")
	{
		tokens.POST("/:address/mint", tokenHandler.Mint)
		tokens.POST("/:address/batch-mint", tokenHandler.BatchMint)
		tokens.POST("/:address/transfer", tokenHandler.Transfer)
		tokens.POST("/:address/batch-transfer", tokenHandler.BatchTransfer)
		tokens.POST("/:address/forced-transfer", tokenHandler.ForcedTransfer)
		tokens.POST("/:address/freeze", tokenHandler.FreezeAccount)
		tokens.POST("/:address/unfreeze", tokenHandler.UnfreezeAccount)
		tokens.POST("/:address/freeze-partial", tokenHandler.FreezePartialTokens)
		tokens.POST("/:address/unfreeze-partial", tokenHandler.UnfreezePartialTokens)
		tokens.POST("/:address/recovery", tokenHandler.RecoveryTransfer)
		tokens.GET("/:address/balance", tokenHandler.Balance)
		tokens.GET("/:address/check-transfer", tokenHandler.CheckTransfer)
		tokens.GET("/:address/compliance", tokenHandler.GetCompliance)
		tokens.PUT("/:address/compliance", tokenHandler.UpdateCompliance)
	}

	return r
}
