package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundchain/chain"
)

const testManifest = `{
  "network": "localhost",
  "chainId": 31337,
  "contracts": {
    "IdentityRegistry":         {"address": "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
    "ComplianceModule":         {"address": "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"},
    "TrustedIssuersRegistry":   {"address": "0x8A791620dd6260079BF849Dc5567aDC3F2FdC318"},
    "FundFactory":              {"address": "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"},
    "InvestmentContract":       {"address": "0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"},
    "PortfolioCompanyRegistry": {"address": "0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9"},
    "FundTokenERC3643":         {"address": "0x5FC8d32690cc91D4c39d9d3abcBD16989F875707"}
  }
}`

var (
	testGP       = common.HexToAddress("0x00000000000000000000000000000000000000B1").Hex()
	testInvestor = common.HexToAddress("0x00000000000000000000000000000000000000C1").Hex()
	testStranger = common.HexToAddress("0x00000000000000000000000000000000000000D1").Hex()
)

// newTestContracts spins up an initialized facade against a manifest written
// to a temp dir, with no RPC endpoint configured.
func newTestContracts(t *testing.T) *Contracts {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment.json")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

	c := New(Config{
		PrivateKey:   devPrivateKey,
		ManifestPath: path,
	})
	c.Init()
	require.True(t, c.IsInitialized())
	return c
}

func TestInitMissingManifestLeavesServiceDisabled(t *testing.T) {
	c := New(Config{
		PrivateKey:   devPrivateKey,
		ManifestPath: filepath.Join(t.TempDir(), "nope.json"),
	})
	c.Init()
	assert.False(t, c.IsInitialized())

	_, err := c.Identity().IsVerified(testInvestor)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = c.Funds().GetFund(1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = c.Investments().TotalVolume()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitBadSignerLeavesServiceDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment.json")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

	c := New(Config{ManifestPath: path})
	c.Init()
	assert.False(t, c.IsInitialized())
}

func TestInitResolvesSigner(t *testing.T) {
	c := newTestContracts(t)
	assert.Equal(t, devAddress, c.Signer().Hex())
}

func TestIdentityServiceLifecycle(t *testing.T) {
	c := newTestContracts(t)
	ids := c.Identity()

	res, err := ids.RegisterIdentity(testInvestor, 840)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TxHash)
	assert.Equal(t, uint64(1), res.BlockNumber)

	verified, err := ids.IsVerified(testInvestor)
	require.NoError(t, err)
	assert.True(t, verified)

	_, err = ids.AddClaim(testInvestor, 2)
	require.NoError(t, err)
	has, err := ids.HasClaim(testInvestor, 2)
	require.NoError(t, err)
	assert.True(t, has)

	res, err = ids.RemoveClaim(testInvestor, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, res.TxHash)
	has, err = ids.HasClaim(testInvestor, 2)
	require.NoError(t, err)
	assert.False(t, has)

	country, err := ids.GetCountry(testInvestor)
	require.NoError(t, err)
	assert.Equal(t, uint16(840), country)

	_, err = ids.UpdateCountry(testInvestor, 276)
	require.NoError(t, err)
	country, err = ids.GetCountry(testInvestor)
	require.NoError(t, err)
	assert.Equal(t, uint16(276), country)

	_, err = ids.RemoveIdentity(testInvestor)
	require.NoError(t, err)
	verified, err = ids.IsVerified(testInvestor)
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestIdentityServiceRejectsBadAddress(t *testing.T) {
	c := newTestContracts(t)
	_, err := c.Identity().RegisterIdentity("not-an-address", 840)
	assert.Error(t, err)
}

func TestFundLifecycleThroughService(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Funds().ApproveGP(testGP)
	require.NoError(t, err)

	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), created.FundID)
	assert.NotEmpty(t, created.TokenAddress)
	assert.NotEmpty(t, created.TxHash)

	info, err := c.Funds().GetFund(created.FundID)
	require.NoError(t, err)
	assert.Equal(t, "Growth Fund I", info.Name)
	assert.Equal(t, "GFI", info.Symbol)
	assert.Equal(t, "1000", info.TargetAmount)
	assert.Equal(t, "10", info.MinimumInvestment)
	assert.Equal(t, common.HexToAddress(testGP).Hex(), info.GP)
	assert.True(t, info.Active)

	active, err := c.Funds().GetActiveFunds(0, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.FundID, active[0].ID)

	_, err = c.Funds().DeactivateFund(testGP, created.FundID)
	require.NoError(t, err)
	active, err = c.Funds().GetActiveFunds(0, 10)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = c.Funds().ReactivateFund(testGP, created.FundID)
	require.NoError(t, err)
}

func TestCreateFundRequiresApprovedGP(t *testing.T) {
	c := newTestContracts(t)
	_, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.Error(t, err)
	var rev *chain.RevertError
	assert.True(t, errors.As(err, &rev))
	assert.ErrorIs(t, err, chain.ErrUnauthorized)
}

func TestTokenServiceMintAndBalance(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Identity().RegisterIdentity(testInvestor, 840)
	require.NoError(t, err)
	_, err = c.Funds().ApproveGP(testGP)
	require.NoError(t, err)
	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)

	_, err = c.Tokens().Mint(created.TokenAddress, testInvestor, "25.5")
	require.NoError(t, err)

	bal, err := c.Tokens().BalanceOf(created.TokenAddress, testInvestor)
	require.NoError(t, err)
	assert.Equal(t, "25.5", bal.Balance)
	assert.Equal(t, "0", bal.FrozenTokens)
	assert.Equal(t, "25.5", bal.AvailableBalance)
	assert.False(t, bal.Frozen)

	_, err = c.Tokens().FreezePartialTokens(created.TokenAddress, testInvestor, "10")
	require.NoError(t, err)
	bal, err = c.Tokens().BalanceOf(created.TokenAddress, testInvestor)
	require.NoError(t, err)
	assert.Equal(t, "10", bal.FrozenTokens)
	assert.Equal(t, "15.5", bal.AvailableBalance)
}

func TestCheckTransferReportsDenialReason(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Identity().RegisterIdentity(testInvestor, 840)
	require.NoError(t, err)
	_, err = c.Funds().ApproveGP(testGP)
	require.NoError(t, err)
	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)
	_, err = c.Tokens().Mint(created.TokenAddress, testInvestor, "100")
	require.NoError(t, err)

	check, err := c.Tokens().CheckTransfer(created.TokenAddress, testInvestor, testStranger, "5")
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, "Recipient identity not verified", check.Reason)

	_, err = c.Identity().RegisterIdentity(testStranger, 840)
	require.NoError(t, err)
	check, err = c.Tokens().CheckTransfer(created.TokenAddress, testInvestor, testStranger, "5")
	require.NoError(t, err)
	assert.True(t, check.Allowed)

	_, err = c.Tokens().Transfer(created.TokenAddress, testInvestor, testStranger, "5")
	require.NoError(t, err)
	bal, err := c.Tokens().BalanceOf(created.TokenAddress, testStranger)
	require.NoError(t, err)
	assert.Equal(t, "5", bal.Balance)
}

func TestTokenServiceUnknownToken(t *testing.T) {
	c := newTestContracts(t)
	_, err := c.Tokens().BalanceOf(testStranger, testInvestor)
	assert.ErrorIs(t, err, chain.ErrNotFound)
}

func TestInvestmentFlowThroughService(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Identity().RegisterIdentity(testInvestor, 840)
	require.NoError(t, err)
	_, err = c.Funds().ApproveGP(testGP)
	require.NoError(t, err)
	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)

	registered, err := c.Investments().RegisterFund(created.TokenAddress, testGP, "1000", "10")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), registered.FundID)

	recorded, err := c.Investments().RecordInvestment(registered.FundID, testInvestor, "50", "50", "wire-20260831-001")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), recorded.InvestmentID)

	inv, err := c.Investments().GetInvestment(registered.FundID, recorded.InvestmentID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", inv.Status)
	assert.Equal(t, "50", inv.Amount)
	assert.Equal(t, "wire-20260831-001", inv.ExternalRef)

	_, err = c.Investments().ConfirmInvestment(registered.FundID, recorded.InvestmentID)
	require.NoError(t, err)

	fund, err := c.Investments().GetFund(registered.FundID)
	require.NoError(t, err)
	assert.Equal(t, "50", fund.RaisedAmount)
	assert.Equal(t, 1, fund.InvestorCount)

	total, err := c.Investments().TotalVolume()
	require.NoError(t, err)
	assert.Equal(t, "50", total)

	funds, err := c.Investments().InvestorFunds(testInvestor)
	require.NoError(t, err)
	assert.Equal(t, []uint64{registered.FundID}, funds)
}

func TestInvestmentBelowMinimumRejected(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Identity().RegisterIdentity(testInvestor, 840)
	require.NoError(t, err)
	_, err = c.Funds().ApproveGP(testGP)
	require.NoError(t, err)
	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)
	registered, err := c.Investments().RegisterFund(created.TokenAddress, testGP, "1000", "10")
	require.NoError(t, err)

	_, err = c.Investments().RecordInvestment(registered.FundID, testInvestor, "5", "5", "")
	assert.ErrorIs(t, err, chain.ErrInvalidParameter)
}

func TestComplianceServiceConfig(t *testing.T) {
	c := newTestContracts(t)

	_, err := c.Funds().ApproveGP(testGP)
	require.NoError(t, err)
	created, err := c.Funds().CreateFund(testGP, "Growth Fund I", "GFI", "1000", "10")
	require.NoError(t, err)

	_, err = c.Compliance().SetMaxHolders(created.TokenAddress, 99)
	require.NoError(t, err)
	_, err = c.Compliance().SetAccreditedRequired(created.TokenAddress, true)
	require.NoError(t, err)

	cfg, err := c.Compliance().GetConfig(created.TokenAddress)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxHolders)
	assert.True(t, cfg.AccreditedRequired)
	assert.Equal(t, 0, cfg.HolderCount)
}

func TestPortfolioServiceFlow(t *testing.T) {
	c := newTestContracts(t)

	registered, err := c.Portfolio().RegisterCompany("Acme Robotics", "Industrial Automation", "US", 2019)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), registered.CompanyID)

	_, err = c.Portfolio().RecordInvestment(registered.CompanyID, 1, "250", 2000, "10000")
	require.NoError(t, err)

	invested, err := c.Portfolio().TotalInvestedIn(registered.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "250", invested)

	equity, err := c.Portfolio().FundEquityIn(1, registered.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), equity)

	portfolio, err := c.Portfolio().FundPortfolio(1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{registered.CompanyID}, portfolio)

	companies, err := c.Portfolio().ActiveCompanies()
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme Robotics", companies[0].Name)
}
