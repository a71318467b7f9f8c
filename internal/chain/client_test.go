package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeNode struct {
	receipt        *types.Receipt
	receiptErrs    []error
	headerErr      error
	receiptCalls   int
	headerCalls    int
	requestedBlock uint64
}

func (f *fakeNode) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.receiptCalls++
	if len(f.receiptErrs) > 0 {
		err := f.receiptErrs[0]
		f.receiptErrs = f.receiptErrs[1:]
		return nil, err
	}
	return f.receipt, nil
}

func (f *fakeNode) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	f.headerCalls++
	f.requestedBlock = number.Uint64()
	if f.headerErr != nil {
		return nil, f.headerErr
	}
	return &types.Header{Number: number, Time: 1700000000}, nil
}

var fastRetry = RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}

func TestFetchReceiptWithBlockTime(t *testing.T) {
	hash := common.HexToHash("0x01")
	n := &fakeNode{
		receipt:     &types.Receipt{TxHash: hash, BlockNumber: big.NewInt(19000000)},
		receiptErrs: []error{errors.New("connection reset")},
	}
	c := newClient(n, fastRetry, nil)

	tx, err := c.FetchReceipt(context.Background(), hash)
	if err != nil {
		t.Fatalf("fetch receipt: %v", err)
	}
	if n.receiptCalls != 2 {
		t.Fatalf("receipt calls mismatch: %d", n.receiptCalls)
	}
	if tx.Hash != hash || tx.Receipt != n.receipt {
		t.Fatalf("receipt mismatch: %+v", tx)
	}
	if tx.Timestamp != 1700000000 || n.requestedBlock != 19000000 {
		t.Fatalf("block time mismatch: ts=%d block=%d", tx.Timestamp, n.requestedBlock)
	}

	if _, err := c.FetchReceipt(context.Background(), hash); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if n.headerCalls != 1 {
		t.Fatalf("block time should be cached, header calls: %d", n.headerCalls)
	}
}

func TestFetchReceiptNotMined(t *testing.T) {
	n := &fakeNode{receiptErrs: []error{ethereum.NotFound}}
	c := newClient(n, fastRetry, nil)

	_, err := c.FetchReceipt(context.Background(), common.HexToHash("0x02"))
	if !errors.Is(err, ErrNotMined) {
		t.Fatalf("expected ErrNotMined, got %v", err)
	}
	if n.receiptCalls != 1 {
		t.Fatalf("not found should not be retried, calls: %d", n.receiptCalls)
	}
}

func TestFetchReceiptWithoutBlockTime(t *testing.T) {
	n := &fakeNode{
		receipt:   &types.Receipt{BlockNumber: big.NewInt(5)},
		headerErr: errors.New("header unavailable"),
	}
	c := newClient(n, fastRetry, nil)

	tx, err := c.FetchReceipt(context.Background(), common.HexToHash("0x03"))
	if err != nil {
		t.Fatalf("fetch receipt: %v", err)
	}
	if tx.Timestamp != 0 {
		t.Fatalf("timestamp should be unset, got %d", tx.Timestamp)
	}
	if n.headerCalls != 3 {
		t.Fatalf("header calls mismatch: %d", n.headerCalls)
	}
}
