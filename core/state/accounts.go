package state

import (
	"fmt"
	"math/big"

	"localshare/core/types"
)

var accountPrefix = []byte("account:")

func accountKey(addr []byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr)
	return buf
}

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// GetAccount loads the native-currency account stored under the provided
// address. Unknown addresses yield a fresh zero-balance account.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("state: address must not be empty")
	}
	var stored storedAccount
	exists, err := m.KVGet(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	account := &types.Account{Nonce: stored.Nonce, Balance: stored.Balance}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return account, nil
}

// PutAccount persists the account under the provided address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("state: account must not be nil")
	}
	balance := account.Balance
	if balance == nil {
		balance = big.NewInt(0)
	}
	if balance.Sign() < 0 {
		return fmt.Errorf("state: negative balance not allowed")
	}
	return m.KVPut(accountKey(addr), &storedAccount{Nonce: account.Nonce, Balance: balance})
}
