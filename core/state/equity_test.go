package state

import (
	"math/big"
	"testing"

	"localshare/core/types"
	"localshare/native/equity"
)

func TestEquityConfigRoundTrip(t *testing.T) {
	manager := newTestManager()

	if _, ok, err := manager.EquityConfigGet(); err != nil || ok {
		t.Fatalf("empty state should report no config: ok=%v err=%v", ok, err)
	}

	config := &equity.Config{Admin: testAddr(0x01), PaymentMint: testAddr(0x02), Bump: 7}
	if err := manager.EquityConfigPut(config); err != nil {
		t.Fatalf("put config: %v", err)
	}

	loaded, ok, err := manager.EquityConfigGet()
	if err != nil || !ok {
		t.Fatalf("get config: ok=%v err=%v", ok, err)
	}
	if *loaded != *config {
		t.Fatalf("config round trip mismatch: %+v vs %+v", loaded, config)
	}
}

func TestEquityBusinessRoundTrip(t *testing.T) {
	manager := newTestManager()
	addr := testAddr(0x10)

	business := &equity.Business{
		Owner:         testAddr(0x11),
		Name:          "Corner Bakery",
		ShareMint:     testAddr(0x12),
		TotalShares:   100,
		PricePerShare: 1000,
		Treasury:      testAddr(0x13),
		Listed:        true,
		Bump:          3,
	}
	if err := manager.EquityBusinessPut(addr, business); err != nil {
		t.Fatalf("put business: %v", err)
	}

	loaded, ok, err := manager.EquityBusinessGet(addr)
	if err != nil || !ok {
		t.Fatalf("get business: ok=%v err=%v", ok, err)
	}
	if *loaded != *business {
		t.Fatalf("business round trip mismatch: %+v vs %+v", loaded, business)
	}

	// Different addresses are isolated.
	if _, ok, err := manager.EquityBusinessGet(testAddr(0x77)); err != nil || ok {
		t.Fatalf("unknown address should miss: ok=%v err=%v", ok, err)
	}
}

func TestEquityOfferingRoundTrip(t *testing.T) {
	manager := newTestManager()
	addr := testAddr(0x20)

	offering := &equity.Offering{
		Business:        testAddr(0x10),
		ShareMint:       testAddr(0x12),
		PaymentMint:     testAddr(0x02),
		PricePerShare:   500,
		RemainingShares: 40,
		Active:          true,
		Bump:            9,
	}
	if err := manager.EquityOfferingPut(addr, offering); err != nil {
		t.Fatalf("put offering: %v", err)
	}

	loaded, ok, err := manager.EquityOfferingGet(addr)
	if err != nil || !ok {
		t.Fatalf("get offering: ok=%v err=%v", ok, err)
	}
	if *loaded != *offering {
		t.Fatalf("offering round trip mismatch: %+v vs %+v", loaded, offering)
	}
}

func TestAccountsDefaultToZero(t *testing.T) {
	manager := newTestManager()
	addr := testAddr(0x30)

	account, err := manager.GetAccount(addr[:])
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.Balance.Sign() != 0 || account.Nonce != 0 {
		t.Fatalf("unknown account should be zeroed: %+v", account)
	}

	account.Balance = big.NewInt(12345)
	account.Nonce = 2
	if err := manager.PutAccount(addr[:], account); err != nil {
		t.Fatalf("put account: %v", err)
	}
	loaded, err := manager.GetAccount(addr[:])
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if loaded.Balance.Int64() != 12345 || loaded.Nonce != 2 {
		t.Fatalf("account round trip mismatch: %+v", loaded)
	}
}

func TestPutAccountRejectsNegativeBalance(t *testing.T) {
	manager := newTestManager()
	addr := testAddr(0x30)
	if err := manager.PutAccount(addr[:], &types.Account{Balance: big.NewInt(-1)}); err == nil {
		t.Fatal("negative balance must be rejected")
	}
}
