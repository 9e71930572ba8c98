package service

import (
	"encoding/json"
	"fmt"
	"os"
)

// Contract names as they appear in the deployment manifest.
const (
	ContractIdentityRegistry  = "IdentityRegistry"
	ContractComplianceModule  = "ComplianceModule"
	ContractTrustedIssuers    = "TrustedIssuersRegistry"
	ContractFundFactory       = "FundFactory"
	ContractInvestment        = "InvestmentContract"
	ContractPortfolioRegistry = "PortfolioCompanyRegistry"
	ContractFundToken         = "FundTokenERC3643"
)

// Manifest is the deployment-address file written by the contract deployment
// pipeline and consumed once at startup.
type Manifest struct {
	Network   string                      `json:"network"`
	ChainID   int64                       `json:"chainId"`
	Contracts map[string]ManifestContract `json:"contracts"`
}

type ManifestContract struct {
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi,omitempty"`
}

// Address returns the deployed address for a contract name, or an error when
// the manifest does not list it.
func (m *Manifest) Address(name string) (string, error) {
	c, ok := m.Contracts[name]
	if !ok || c.Address == "" {
		return "", fmt.Errorf("manifest has no address for %s", name)
	}
	return c.Address, nil
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
