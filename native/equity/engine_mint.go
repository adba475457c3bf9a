package equity

import "math/big"

// InitShareMint creates the business's share mint, its program-derived mint
// authority and the shares vault, then issues the entire configured supply
// into the vault. One-shot: the create primitives fail when the mint or vault
// address is already occupied, so the instruction cannot run twice for the
// same business.
func (e *Engine) InitShareMint(owner [20]byte) (*Business, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	addr, business, err := e.loadBusinessByOwner(owner)
	if err != nil {
		return nil, err
	}
	if business.Owner != owner {
		return nil, ErrInvalidBusinessOwner
	}
	if business.TotalShares == 0 {
		return nil, ErrInvalidShareAmount
	}
	if business.MintInitialized() {
		return nil, ErrBusinessAlreadyInitialized
	}

	mint, _ := DeriveShareMintAddress(addr)
	authority, _ := DeriveShareMintAuthority(addr)
	vault, _ := DeriveSharesVaultAddress(addr)

	if err := e.state.TokenCreateMint(mint, authority, 0); err != nil {
		return nil, err
	}
	if err := e.state.TokenCreateAccount(vault, mint, authority); err != nil {
		return nil, err
	}
	supply := new(big.Int).SetUint64(business.TotalShares)
	if err := e.state.TokenMintTo(mint, authority, vault, supply); err != nil {
		return nil, err
	}

	business.ShareMint = mint
	if err := e.state.EquityBusinessPut(addr, business); err != nil {
		return nil, err
	}
	e.emit(ShareMintInitializedEvent(addr, mint, vault, business.TotalShares))
	return business.Clone(), nil
}
