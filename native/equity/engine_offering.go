package equity

import "math/big"

// The escrow offering path predates the vault-backed listing and is kept for
// compatibility: the owner parks a fixed batch of already-minted shares in a
// per-offering vault, investors draw it down, and the offering deactivates
// itself at exhaustion.

// CreateOffering escrows initialShares of the owner's shares into a freshly
// created offering vault and records the sale terms. The offering address is
// derived from the business and its share mint, so at most one offering
// exists per pair.
func (e *Engine) CreateOffering(owner [20]byte, pricePerShare uint64, initialShares uint64) (*Offering, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(owner) {
		return nil, errZeroCaller
	}
	config, ok, err := e.state.EquityConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConfigNotInitialized
	}
	businessAddr, business, err := e.loadBusinessByOwner(owner)
	if err != nil {
		return nil, err
	}
	if business.Owner != owner {
		return nil, ErrInvalidBusinessOwner
	}
	if pricePerShare == 0 {
		return nil, ErrInvalidPrice
	}
	if initialShares == 0 {
		return nil, ErrInvalidShareAmount
	}
	if _, err := checkedMul(pricePerShare, initialShares); err != nil {
		return nil, err
	}
	if !business.MintInitialized() {
		return nil, ErrMintNotInitialized
	}

	offeringAddr, bump := DeriveOfferingAddress(businessAddr, business.ShareMint)
	if _, exists, err := e.state.EquityOfferingGet(offeringAddr); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrOfferingExists
	}

	ownerAccount, _ := DeriveTokenAccountAddress(business.ShareMint, owner)
	ownerBalance, err := e.state.TokenBalance(ownerAccount)
	if err != nil {
		return nil, err
	}
	shareAmount := new(big.Int).SetUint64(initialShares)
	if ownerBalance.Cmp(shareAmount) < 0 {
		return nil, ErrInsufficientShares
	}

	// The offering record itself is the vault's signing authority.
	vault, _ := DeriveOfferingVaultAddress(offeringAddr)
	if err := e.state.TokenCreateAccount(vault, business.ShareMint, offeringAddr); err != nil {
		return nil, err
	}
	if err := e.state.TokenTransfer(business.ShareMint, ownerAccount, vault, owner, shareAmount); err != nil {
		return nil, err
	}

	offering := &Offering{
		Business:        businessAddr,
		ShareMint:       business.ShareMint,
		PaymentMint:     config.PaymentMint,
		PricePerShare:   pricePerShare,
		RemainingShares: initialShares,
		Active:          true,
		Bump:            bump,
	}
	if err := e.state.EquityOfferingPut(offeringAddr, offering); err != nil {
		return nil, err
	}
	e.emit(OfferingCreatedEvent(offeringAddr, businessAddr, pricePerShare, initialShares))
	return offering.Clone(), nil
}

// BuySharesFromOffering draws amount shares out of an active offering's
// escrow vault against a direct payment to the business owner. The offering
// record signs the vault leg; exhaustion terminally deactivates the offering.
func (e *Engine) BuySharesFromOffering(buyer [20]byte, offeringAddr [20]byte, amount uint64) (*Offering, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(buyer) {
		return nil, errZeroCaller
	}
	offering, ok, err := e.state.EquityOfferingGet(offeringAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferingNotFound
	}
	business, ok, err := e.state.EquityBusinessGet(offering.Business)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidBusiness
	}
	if !offering.Active {
		return nil, ErrOfferingNotActive
	}
	if amount == 0 {
		return nil, ErrInvalidShareAmount
	}
	if amount > offering.RemainingShares {
		return nil, ErrInsufficientShares
	}

	vault, _ := DeriveOfferingVaultAddress(offeringAddr)
	vaultBalance, err := e.state.TokenBalance(vault)
	if err != nil {
		return nil, err
	}
	shareAmount := new(big.Int).SetUint64(amount)
	if vaultBalance.Cmp(shareAmount) < 0 {
		return nil, ErrInsufficientShares
	}

	cost, err := checkedMul(offering.PricePerShare, amount)
	if err != nil {
		return nil, err
	}

	if err := e.payNative(buyer, business.Owner, cost); err != nil {
		return nil, err
	}

	buyerAccount, _ := DeriveTokenAccountAddress(offering.ShareMint, buyer)
	if exists, err := e.state.TokenAccountExists(buyerAccount); err != nil {
		return nil, err
	} else if !exists {
		if err := e.state.TokenCreateAccount(buyerAccount, offering.ShareMint, buyer); err != nil {
			return nil, err
		}
	}
	if err := e.state.TokenTransfer(offering.ShareMint, vault, buyerAccount, offeringAddr, shareAmount); err != nil {
		return nil, err
	}

	remaining, err := checkedSub(offering.RemainingShares, amount)
	if err != nil {
		return nil, err
	}
	offering.RemainingShares = remaining
	if remaining == 0 {
		offering.Active = false
	}
	if err := e.state.EquityOfferingPut(offeringAddr, offering); err != nil {
		return nil, err
	}
	e.emit(OfferingPurchasedEvent(offeringAddr, buyer, amount, cost, remaining))
	if remaining == 0 {
		e.emit(OfferingExhaustedEvent(offeringAddr))
	}
	return offering.Clone(), nil
}
