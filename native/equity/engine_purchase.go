package equity

import "math/big"

// Purchase is the receipt returned by a successful vault-backed purchase.
type Purchase struct {
	Business       [20]byte
	Buyer          [20]byte
	Amount         uint64
	Cost           uint64
	VaultRemaining uint64
}

// BuyShares executes the direct purchase protocol against a listed business:
// the buyer pays price x amount native currency into the treasury and
// receives the shares out of the vault under the mint authority's derived
// signature. Validations run in order and the first failure aborts the whole
// instruction; the processor guarantees the two transfer legs land together
// or not at all.
func (e *Engine) BuyShares(buyer [20]byte, businessAddr [20]byte, amount uint64) (*Purchase, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(buyer) {
		return nil, errZeroCaller
	}
	business, ok, err := e.state.EquityBusinessGet(businessAddr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusinessNotFound
	}
	if !business.Listed {
		return nil, ErrOfferingNotActive
	}
	if amount == 0 {
		return nil, ErrInvalidShareAmount
	}
	if !business.MintInitialized() {
		return nil, ErrMintNotInitialized
	}

	vault, _ := DeriveSharesVaultAddress(businessAddr)
	vaultBalance, err := e.state.TokenBalance(vault)
	if err != nil {
		return nil, err
	}
	shareAmount := new(big.Int).SetUint64(amount)
	if vaultBalance.Cmp(shareAmount) < 0 {
		return nil, ErrInsufficientShares
	}

	cost, err := checkedMul(business.PricePerShare, amount)
	if err != nil {
		return nil, err
	}

	if err := e.payNative(buyer, business.Treasury, cost); err != nil {
		return nil, err
	}

	buyerAccount, _ := DeriveTokenAccountAddress(business.ShareMint, buyer)
	if exists, err := e.state.TokenAccountExists(buyerAccount); err != nil {
		return nil, err
	} else if !exists {
		if err := e.state.TokenCreateAccount(buyerAccount, business.ShareMint, buyer); err != nil {
			return nil, err
		}
	}

	// The vault is controlled by the derived mint authority; recomputing the
	// seeds here is what stamps the transfer with that signature.
	authority, _ := DeriveShareMintAuthority(businessAddr)
	if err := e.state.TokenTransfer(business.ShareMint, vault, buyerAccount, authority, shareAmount); err != nil {
		return nil, err
	}

	remaining := new(big.Int).Sub(vaultBalance, shareAmount).Uint64()
	e.emit(SharesPurchasedEvent(businessAddr, buyer, amount, cost, remaining))
	return &Purchase{
		Business:       businessAddr,
		Buyer:          buyer,
		Amount:         amount,
		Cost:           cost,
		VaultRemaining: remaining,
	}, nil
}

// payNative moves cost units of native currency from the buyer to the
// recipient, failing before any write when the buyer cannot cover it.
func (e *Engine) payNative(from [20]byte, to [20]byte, cost uint64) error {
	price := new(big.Int).SetUint64(cost)
	payer, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	payer = payer.Clone()
	if payer.Balance.Cmp(price) < 0 {
		return ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	payee, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	payee = payee.Clone()
	payer.Balance = new(big.Int).Sub(payer.Balance, price)
	payee.Balance = new(big.Int).Add(payee.Balance, price)
	if err := e.state.PutAccount(from[:], payer); err != nil {
		return err
	}
	return e.state.PutAccount(to[:], payee)
}
