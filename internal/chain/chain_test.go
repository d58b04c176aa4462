package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	testContract = "0x1111111111111111111111111111111111111111"
	testWallet   = "0x2222222222222222222222222222222222222222"
	// Throwaway key, never funded anywhere.
	testOperatorKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

type fakeBackend struct {
	callResult  []byte
	callErr     error
	callCount   int
	sentTxs     []*types.Transaction
	sendErr     error
	gasPrice    *big.Int
	nonce       uint64
	chainID     *big.Int
	lastCallMsg ethereum.CallMsg
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.callCount++
	f.lastCallMsg = msg
	return f.callResult, f.callErr
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	if f.gasPrice == nil {
		return big.NewInt(1_000_000_000), nil
	}
	return f.gasPrice, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTxs = append(f.sentTxs, tx)
	return nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	if f.chainID == nil {
		return big.NewInt(10143), nil
	}
	return f.chainID, nil
}

func TestTurnCost(t *testing.T) {
	if got := TurnCost(false); got.Cmp(big.NewInt(1_000_000_000_000_000)) != 0 {
		t.Errorf("text turn cost = %s, want 0.001 in wei", got)
	}
	if got := TurnCost(true); got.Cmp(big.NewInt(3_000_000_000_000_000)) != 0 {
		t.Errorf("image turn cost = %s, want 0.003 in wei", got)
	}
	// Callers may mutate the returned value without corrupting the constants.
	c := TurnCost(false)
	c.SetInt64(0)
	if TextTurnCost.Sign() == 0 {
		t.Error("TurnCost returned the shared constant instead of a copy")
	}
}

func TestReaderBalance(t *testing.T) {
	want := big.NewInt(5_000_000_000_000_000)
	backend := &fakeBackend{callResult: common.LeftPadBytes(want.Bytes(), 32)}

	r, err := NewReader(backend, testContract)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	got, err := r.Balance(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("Balance = %s, want %s", got, want)
	}
	if backend.lastCallMsg.To == nil || *backend.lastCallMsg.To != common.HexToAddress(testContract) {
		t.Errorf("Balance called wrong contract: %v", backend.lastCallMsg.To)
	}
}

func TestReaderBalanceRejectsBadAddress(t *testing.T) {
	backend := &fakeBackend{}
	r, err := NewReader(backend, testContract)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if _, err := r.Balance(context.Background(), "not-an-address"); err == nil {
		t.Fatal("Balance accepted a malformed wallet address")
	}
	if backend.callCount != 0 {
		t.Error("Balance hit the RPC backend for a malformed address")
	}
}

func TestNewReaderRejectsBadContract(t *testing.T) {
	if _, err := NewReader(&fakeBackend{}, "0xnope"); err == nil {
		t.Fatal("NewReader accepted a malformed contract address")
	}
}

func TestRelayerDebit(t *testing.T) {
	backend := &fakeBackend{nonce: 7}
	rel, err := NewRelayer(context.Background(), backend, testContract, testOperatorKey)
	if err != nil {
		t.Fatalf("NewRelayer: %v", err)
	}

	hash, err := rel.Debit(context.Background(), testWallet, TurnCost(false))
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if hash == "" {
		t.Error("Debit returned an empty tx hash")
	}
	if len(backend.sentTxs) != 1 {
		t.Fatalf("broadcast %d transactions, want 1", len(backend.sentTxs))
	}

	tx := backend.sentTxs[0]
	if tx.Nonce() != 7 {
		t.Errorf("tx nonce = %d, want 7", tx.Nonce())
	}
	if tx.Gas() != debitGasLimit {
		t.Errorf("tx gas = %d, want %d", tx.Gas(), debitGasLimit)
	}
	if tx.To() == nil || *tx.To() != common.HexToAddress(testContract) {
		t.Errorf("tx sent to %v, want %s", tx.To(), testContract)
	}
	// Simulation must have run with the operator as sender.
	if backend.lastCallMsg.From == (common.Address{}) {
		t.Error("debit simulation ran without a From address")
	}
}

func TestRelayerDebitSimulationFailureDoesNotBroadcast(t *testing.T) {
	backend := &fakeBackend{callErr: errors.New("execution reverted: insufficient balance")}
	rel, err := NewRelayer(context.Background(), backend, testContract, testOperatorKey)
	if err != nil {
		t.Fatalf("NewRelayer: %v", err)
	}

	if _, err := rel.Debit(context.Background(), testWallet, TurnCost(true)); err == nil {
		t.Fatal("Debit succeeded despite a failing simulation")
	}
	if len(backend.sentTxs) != 0 {
		t.Errorf("broadcast %d transactions after failed simulation, want 0", len(backend.sentTxs))
	}
}

func TestNewRelayerRejectsBadKey(t *testing.T) {
	if _, err := NewRelayer(context.Background(), &fakeBackend{}, testContract, "zz"); err == nil {
		t.Fatal("NewRelayer accepted a malformed operator key")
	}
}
