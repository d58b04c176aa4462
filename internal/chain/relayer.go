package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// debitGasLimit pins the gas allowance for a debit call.
const debitGasLimit = 200_000

// Relayer invokes the ledger contract's debit method on the user's behalf,
// signing with an operator-held key that also pays the transaction fee.
type Relayer struct {
	backend  Backend
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
}

// NewRelayer creates a Relayer from the operator's hex-encoded private key.
// The chain ID is fetched once at construction.
func NewRelayer(ctx context.Context, backend Backend, contractAddress, operatorKeyHex string) (*Relayer, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("chain: invalid fuel contract address %q", contractAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: invalid operator key: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: fetch chain id: %w", err)
	}

	return &Relayer{
		backend:  backend,
		contract: common.HexToAddress(contractAddress),
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
	}, nil
}

// Debit deducts amount from the wallet's fuel balance. The call is simulated
// first so a revert (e.g. insufficient on-chain funds) surfaces before any
// gas is spent, then signed and broadcast. Returns the transaction hash.
func (r *Relayer) Debit(ctx context.Context, walletAddress string, amount *big.Int) (string, error) {
	if !common.IsHexAddress(walletAddress) {
		return "", fmt.Errorf("chain: invalid wallet address %q", walletAddress)
	}

	data, err := fuelABI.Pack("debit", common.HexToAddress(walletAddress), amount)
	if err != nil {
		return "", fmt.Errorf("chain: pack debit: %w", err)
	}

	gasPrice, err := r.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("chain: suggest gas price: %w", err)
	}

	// Simulate with the operator as sender to catch revert conditions.
	_, err = r.backend.CallContract(ctx, ethereum.CallMsg{
		From:     r.from,
		To:       &r.contract,
		Gas:      debitGasLimit,
		GasPrice: gasPrice,
		Data:     data,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("chain: debit simulation failed: %w", err)
	}

	nonce, err := r.backend.PendingNonceAt(ctx, r.from)
	if err != nil {
		return "", fmt.Errorf("chain: fetch nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &r.contract,
		Value:    big.NewInt(0),
		Gas:      debitGasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(r.chainID), r.key)
	if err != nil {
		return "", fmt.Errorf("chain: sign debit tx: %w", err)
	}

	if err := r.backend.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("chain: broadcast debit tx: %w", err)
	}

	hash := signedTx.Hash().Hex()
	log.Printf("[Relayer] debited %s wei from %s (tx %s)", amount, walletAddress, hash)
	return hash, nil
}
