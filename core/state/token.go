package state

import (
	"errors"
	"fmt"
	"math/big"
)

// The token ledger is the fungible-token collaborator of the equity module:
// address-keyed mints with a single mint authority, and token accounts that
// hold balances of exactly one mint. Every supply-changing or balance-moving
// operation validates the signer against the stored authority, and every
// create operation fails when the target address is already occupied. The
// one-shot semantics of mint and vault initialisation lean on that create
// behaviour rather than on application-level flags.

var (
	// ErrTokenMintExists is returned when a mint is created at an occupied address.
	ErrTokenMintExists = errors.New("token: mint already exists")
	// ErrTokenAccountExists is returned when a token account is created at an occupied address.
	ErrTokenAccountExists = errors.New("token: account already exists")
	// ErrTokenMintNotFound is returned when the referenced mint is unknown.
	ErrTokenMintNotFound = errors.New("token: mint not found")
	// ErrTokenAccountNotFound is returned when the referenced token account is unknown.
	ErrTokenAccountNotFound = errors.New("token: account not found")
	// ErrTokenUnauthorized is returned when the signer does not hold the required authority.
	ErrTokenUnauthorized = errors.New("token: signer lacks authority")
	// ErrTokenInsufficientBalance is returned when a transfer exceeds the source balance.
	ErrTokenInsufficientBalance = errors.New("token: insufficient balance")
)

var (
	tokenMintPrefix    = []byte("token/mint:")
	tokenAccountPrefix = []byte("token/account:")
)

// TokenMint describes a fungible share mint controlled by a single authority.
type TokenMint struct {
	Address   [20]byte
	Authority [20]byte
	Supply    *big.Int
	Decimals  uint8
}

// TokenAccount holds a balance of one mint on behalf of its authority.
type TokenAccount struct {
	Address   [20]byte
	Mint      [20]byte
	Authority [20]byte
	Balance   *big.Int
}

func tokenMintKey(mint [20]byte) []byte {
	buf := make([]byte, len(tokenMintPrefix)+len(mint))
	copy(buf, tokenMintPrefix)
	copy(buf[len(tokenMintPrefix):], mint[:])
	return buf
}

func tokenAccountKey(addr [20]byte) []byte {
	buf := make([]byte, len(tokenAccountPrefix)+len(addr))
	copy(buf, tokenAccountPrefix)
	copy(buf[len(tokenAccountPrefix):], addr[:])
	return buf
}

func ensureMintDefaults(mint *TokenMint) {
	if mint.Supply == nil {
		mint.Supply = big.NewInt(0)
	}
}

func ensureTokenAccountDefaults(account *TokenAccount) {
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
}

// TokenCreateMint registers a new mint at the provided address. It fails when
// the address is already occupied.
func (m *Manager) TokenCreateMint(mint [20]byte, authority [20]byte, decimals uint8) error {
	exists, err := m.KVHas(tokenMintKey(mint))
	if err != nil {
		return err
	}
	if exists {
		return ErrTokenMintExists
	}
	record := &TokenMint{Address: mint, Authority: authority, Supply: big.NewInt(0), Decimals: decimals}
	return m.KVPut(tokenMintKey(mint), record)
}

// TokenMint loads the mint stored at the provided address.
func (m *Manager) TokenMint(mint [20]byte) (*TokenMint, bool, error) {
	record := new(TokenMint)
	exists, err := m.KVGet(tokenMintKey(mint), record)
	if err != nil || !exists {
		return nil, false, err
	}
	ensureMintDefaults(record)
	return record, true, nil
}

// TokenCreateAccount registers a token account holding the provided mint under
// the control of the supplied authority. It fails when the address is occupied.
func (m *Manager) TokenCreateAccount(addr [20]byte, mint [20]byte, authority [20]byte) error {
	if _, ok, err := m.TokenMint(mint); err != nil {
		return err
	} else if !ok {
		return ErrTokenMintNotFound
	}
	exists, err := m.KVHas(tokenAccountKey(addr))
	if err != nil {
		return err
	}
	if exists {
		return ErrTokenAccountExists
	}
	record := &TokenAccount{Address: addr, Mint: mint, Authority: authority, Balance: big.NewInt(0)}
	return m.KVPut(tokenAccountKey(addr), record)
}

// TokenAccount loads the token account stored at the provided address.
func (m *Manager) TokenAccount(addr [20]byte) (*TokenAccount, bool, error) {
	record := new(TokenAccount)
	exists, err := m.KVGet(tokenAccountKey(addr), record)
	if err != nil || !exists {
		return nil, false, err
	}
	ensureTokenAccountDefaults(record)
	return record, true, nil
}

// TokenBalance returns the balance held by the token account at the provided
// address. Unknown accounts report zero.
func (m *Manager) TokenBalance(addr [20]byte) (*big.Int, error) {
	account, ok, err := m.TokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(account.Balance), nil
}

// TokenMintTo issues new tokens into the destination account. The signer must
// be the mint authority and the destination account must hold the same mint.
func (m *Manager) TokenMintTo(mint [20]byte, signer [20]byte, dest [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("token: mint amount must be positive")
	}
	record, ok, err := m.TokenMint(mint)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenMintNotFound
	}
	if record.Authority != signer {
		return ErrTokenUnauthorized
	}
	account, ok, err := m.TokenAccount(dest)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenAccountNotFound
	}
	if account.Mint != mint {
		return fmt.Errorf("token: destination account holds a different mint")
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	record.Supply = new(big.Int).Add(record.Supply, amount)
	if err := m.KVPut(tokenAccountKey(dest), account); err != nil {
		return err
	}
	return m.KVPut(tokenMintKey(mint), record)
}

// TokenTransfer moves tokens between two accounts of the same mint. The signer
// must be the authority of the source account.
func (m *Manager) TokenTransfer(mint [20]byte, from [20]byte, to [20]byte, signer [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("token: transfer amount must be positive")
	}
	source, ok, err := m.TokenAccount(from)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenAccountNotFound
	}
	if source.Mint != mint {
		return fmt.Errorf("token: source account holds a different mint")
	}
	if source.Authority != signer {
		return ErrTokenUnauthorized
	}
	if source.Balance.Cmp(amount) < 0 {
		return ErrTokenInsufficientBalance
	}
	dest, ok, err := m.TokenAccount(to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenAccountNotFound
	}
	if dest.Mint != mint {
		return fmt.Errorf("token: destination account holds a different mint")
	}
	source.Balance = new(big.Int).Sub(source.Balance, amount)
	dest.Balance = new(big.Int).Add(dest.Balance, amount)
	if err := m.KVPut(tokenAccountKey(from), source); err != nil {
		return err
	}
	return m.KVPut(tokenAccountKey(to), dest)
}
