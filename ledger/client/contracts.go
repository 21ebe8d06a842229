package client

import (
	"fmt"

	"github.com/bridgebot/gowatch/ledger/types"
)

// ContractConfig holds the per-chain deployment addresses.
type ContractConfig struct {
	InteropToken string // InteropToken settler contract
}

// LocalDevnetContracts is the default hardhat/anvil deployment address.
var LocalDevnetContracts = ContractConfig{
	InteropToken: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
}

// SepoliaContracts is the Sepolia testnet deployment.
var SepoliaContracts = ContractConfig{
	InteropToken: "0x8dE2b9FcB2f1C9E8AC5fD4E7C6b72bE45D0d9A11",
}

// GetContractConfig returns the deployment config for a chain id.
func GetContractConfig(chain types.Chain) (*ContractConfig, error) {
	switch chain {
	case types.ChainLocal:
		return &LocalDevnetContracts, nil
	case types.ChainSepolia:
		return &SepoliaContracts, nil
	default:
		return nil, fmt.Errorf("unsupported chain id: %d", chain)
	}
}
