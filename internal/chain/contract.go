// Package chain talks to the LuminaFuel ledger contract on an EVM test
// network: a read-only balance accessor and an operator-signed debit call.
package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// The two functions of the ledger contract this service consumes.
const fuelABIJSON = `[
	{
		"inputs": [{"internalType": "address", "name": "user", "type": "address"}],
		"name": "getBalance",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "user", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"}
		],
		"name": "debit",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var fuelABI = mustParseABI(fuelABIJSON)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic("chain: invalid fuel ABI: " + err.Error())
	}
	return parsed
}

// Turn costs in wei of the native test-network token.
var (
	TextTurnCost  = big.NewInt(1_000_000_000_000_000) // 0.001
	ImageTurnCost = big.NewInt(3_000_000_000_000_000) // 0.003
)

// TurnCost returns the fuel debited for one turn of the given kind.
func TurnCost(imageTurn bool) *big.Int {
	if imageTurn {
		return new(big.Int).Set(ImageTurnCost)
	}
	return new(big.Int).Set(TextTurnCost)
}

// Backend is the subset of ethclient.Client the reader and relayer need.
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ChainID(ctx context.Context) (*big.Int, error)
}
