package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Reader queries the ledger contract's read-only balance accessor.
// It has no side effects on chain state.
type Reader struct {
	backend  Backend
	contract common.Address
}

// NewReader creates a Reader against the given contract address.
func NewReader(backend Backend, contractAddress string) (*Reader, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("chain: invalid fuel contract address %q", contractAddress)
	}
	return &Reader{
		backend:  backend,
		contract: common.HexToAddress(contractAddress),
	}, nil
}

// Balance returns the recorded fuel balance for a wallet, in wei.
func (r *Reader) Balance(ctx context.Context, walletAddress string) (*big.Int, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("chain: invalid wallet address %q", walletAddress)
	}

	data, err := fuelABI.Pack("getBalance", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("chain: pack getBalance: %w", err)
	}

	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &r.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: getBalance call failed: %w", err)
	}

	out, err := fuelABI.Unpack("getBalance", raw)
	if err != nil {
		return nil, fmt.Errorf("chain: unpack getBalance: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("chain: unexpected getBalance return type %T", out[0])
	}

	return balance, nil
}
