package state

import (
	"errors"
	"math/big"
	"testing"

	"localshare/storage"
	"localshare/storage/statedb"
)

func newTestManager() *Manager {
	return NewManager(statedb.New(storage.NewMemDB()))
}

func testAddr(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func TestTokenCreateMintIsOneShot(t *testing.T) {
	manager := newTestManager()
	mint := testAddr(0x01)
	authority := testAddr(0x02)

	if err := manager.TokenCreateMint(mint, authority, 0); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if err := manager.TokenCreateMint(mint, authority, 0); !errors.Is(err, ErrTokenMintExists) {
		t.Fatalf("expected ErrTokenMintExists, got %v", err)
	}

	record, ok, err := manager.TokenMint(mint)
	if err != nil || !ok {
		t.Fatalf("load mint: ok=%v err=%v", ok, err)
	}
	if record.Authority != authority || record.Supply.Sign() != 0 {
		t.Fatalf("unexpected mint record: %+v", record)
	}
}

func TestTokenCreateAccountRequiresMint(t *testing.T) {
	manager := newTestManager()
	if err := manager.TokenCreateAccount(testAddr(0x10), testAddr(0x01), testAddr(0x02)); !errors.Is(err, ErrTokenMintNotFound) {
		t.Fatalf("expected ErrTokenMintNotFound, got %v", err)
	}
}

func TestTokenCreateAccountIsOneShot(t *testing.T) {
	manager := newTestManager()
	mint := testAddr(0x01)
	if err := manager.TokenCreateMint(mint, testAddr(0x02), 0); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	account := testAddr(0x10)
	if err := manager.TokenCreateAccount(account, mint, testAddr(0x03)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := manager.TokenCreateAccount(account, mint, testAddr(0x03)); !errors.Is(err, ErrTokenAccountExists) {
		t.Fatalf("expected ErrTokenAccountExists, got %v", err)
	}
}

func TestTokenMintToChecksAuthority(t *testing.T) {
	manager := newTestManager()
	mint := testAddr(0x01)
	authority := testAddr(0x02)
	dest := testAddr(0x10)

	if err := manager.TokenCreateMint(mint, authority, 0); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if err := manager.TokenCreateAccount(dest, mint, testAddr(0x03)); err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := manager.TokenMintTo(mint, testAddr(0x99), dest, big.NewInt(10)); !errors.Is(err, ErrTokenUnauthorized) {
		t.Fatalf("expected ErrTokenUnauthorized, got %v", err)
	}
	if err := manager.TokenMintTo(mint, authority, dest, big.NewInt(10)); err != nil {
		t.Fatalf("mint to: %v", err)
	}

	balance, err := manager.TokenBalance(dest)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Int64() != 10 {
		t.Fatalf("unexpected balance: %s", balance)
	}
	record, _, err := manager.TokenMint(mint)
	if err != nil {
		t.Fatalf("load mint: %v", err)
	}
	if record.Supply.Int64() != 10 {
		t.Fatalf("supply not tracked: %s", record.Supply)
	}
}

func TestTokenTransfer(t *testing.T) {
	manager := newTestManager()
	mint := testAddr(0x01)
	authority := testAddr(0x02)
	holder := testAddr(0x03)
	from := testAddr(0x10)
	to := testAddr(0x11)

	if err := manager.TokenCreateMint(mint, authority, 0); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if err := manager.TokenCreateAccount(from, mint, holder); err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := manager.TokenCreateAccount(to, mint, testAddr(0x04)); err != nil {
		t.Fatalf("create dest: %v", err)
	}
	if err := manager.TokenMintTo(mint, authority, from, big.NewInt(100)); err != nil {
		t.Fatalf("mint to: %v", err)
	}

	if err := manager.TokenTransfer(mint, from, to, testAddr(0x99), big.NewInt(10)); !errors.Is(err, ErrTokenUnauthorized) {
		t.Fatalf("expected ErrTokenUnauthorized, got %v", err)
	}
	if err := manager.TokenTransfer(mint, from, to, holder, big.NewInt(101)); !errors.Is(err, ErrTokenInsufficientBalance) {
		t.Fatalf("expected ErrTokenInsufficientBalance, got %v", err)
	}
	if err := manager.TokenTransfer(mint, from, to, holder, big.NewInt(40)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	fromBalance, _ := manager.TokenBalance(from)
	toBalance, _ := manager.TokenBalance(to)
	if fromBalance.Int64() != 60 || toBalance.Int64() != 40 {
		t.Fatalf("unexpected balances: from=%s to=%s", fromBalance, toBalance)
	}
}

func TestTokenBalanceUnknownAccountIsZero(t *testing.T) {
	manager := newTestManager()
	balance, err := manager.TokenBalance(testAddr(0x42))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("unknown account should report zero, got %s", balance)
	}
}
