package equity

import (
	"math/big"

	"localshare/core/events"
	"localshare/core/types"
)

type engineState interface {
	EquityConfigGet() (*Config, bool, error)
	EquityConfigPut(*Config) error
	EquityBusinessGet(addr [20]byte) (*Business, bool, error)
	EquityBusinessPut(addr [20]byte, business *Business) error
	EquityOfferingGet(addr [20]byte) (*Offering, bool, error)
	EquityOfferingPut(addr [20]byte, offering *Offering) error
	TokenCreateMint(mint, authority [20]byte, decimals uint8) error
	TokenCreateAccount(addr, mint, authority [20]byte) error
	TokenAccountExists(addr [20]byte) (bool, error)
	TokenMintTo(mint, signer, dest [20]byte, amount *big.Int) error
	TokenTransfer(mint, from, to, signer [20]byte, amount *big.Int) error
	TokenBalance(addr [20]byte) (*big.Int, error)
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// Engine wires the equity-share protocol logic with persistence and event
// emission. Each exported method is one instruction: a bounded synchronous
// sequence of validations and transfers with no retries and no blocking. The
// enclosing state processor supplies the all-or-nothing boundary.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs an equity engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) loadBusinessByOwner(owner [20]byte) ([20]byte, *Business, error) {
	addr, _ := DeriveBusinessAddress(owner)
	business, ok, err := e.state.EquityBusinessGet(addr)
	if err != nil {
		return addr, nil, err
	}
	if !ok {
		return addr, nil, ErrBusinessNotFound
	}
	return addr, business, nil
}

// InitConfig creates the protocol's singleton configuration record. The
// record lives at a fixed derived address, so a second initialisation attempt
// fails deterministically instead of overwriting the first.
func (e *Engine) InitConfig(admin [20]byte, paymentMint [20]byte) (*Config, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(admin) {
		return nil, errZeroCaller
	}
	_, bump := DeriveConfigAddress()
	if _, ok, err := e.state.EquityConfigGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrConfigAlreadyInitialized
	}
	config := &Config{Admin: admin, PaymentMint: paymentMint, Bump: bump}
	if err := e.state.EquityConfigPut(config); err != nil {
		return nil, err
	}
	e.emit(ConfigInitializedEvent(admin, paymentMint))
	return config.Clone(), nil
}

// RegisterBusiness upserts the owner-keyed business record. First contact
// creates the record with default economics; later calls only rename it. The
// derived address is the identity key, so "new" detection is the existence of
// the record rather than a sentinel owner value.
func (e *Engine) RegisterBusiness(owner [20]byte, name string) (*Business, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(owner) {
		return nil, errZeroCaller
	}
	sanitized, err := sanitizeBusinessName(name)
	if err != nil {
		return nil, err
	}
	addr, bump := DeriveBusinessAddress(owner)
	business, ok, err := e.state.EquityBusinessGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		business = &Business{
			Owner:    owner,
			Name:     sanitized,
			Treasury: owner,
			Bump:     bump,
		}
		if err := e.state.EquityBusinessPut(addr, business); err != nil {
			return nil, err
		}
		e.emit(BusinessRegisteredEvent(addr, owner, sanitized))
		return business.Clone(), nil
	}
	if business.Owner != owner {
		return nil, ErrInvalidBusinessOwner
	}
	business.Name = sanitized
	if err := e.state.EquityBusinessPut(addr, business); err != nil {
		return nil, err
	}
	e.emit(BusinessRenamedEvent(addr, owner, sanitized))
	return business.Clone(), nil
}

// ConfigureOffering overwrites the business's offering economics. The business
// is forced off the marketplace so a re-configuration always requires an
// explicit re-listing. Once the share mint exists the supply is fixed, so the
// economics freeze: rewriting TotalShares after minting would let the vault
// hold more shares than the record admits.
func (e *Engine) ConfigureOffering(owner [20]byte, totalShares uint64, pricePerShare uint64, treasury [20]byte) (*Business, error) {
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
	if business.MintInitialized() {
		return nil, ErrBusinessAlreadyInitialized
	}
	if totalShares == 0 {
		return nil, ErrInvalidShareAmount
	}
	if pricePerShare == 0 {
		return nil, ErrInvalidPrice
	}
	if _, err := checkedMul(pricePerShare, totalShares); err != nil {
		return nil, err
	}
	if isZeroAddress(treasury) {
		treasury = owner
	}
	business.TotalShares = totalShares
	business.PricePerShare = pricePerShare
	business.Treasury = treasury
	business.Listed = false
	if err := e.state.EquityBusinessPut(addr, business); err != nil {
		return nil, err
	}
	e.emit(OfferingConfiguredEvent(addr, totalShares, pricePerShare, treasury))
	return business.Clone(), nil
}

// ListBusiness flips the marketplace flag once all preconditions hold. The
// transition is one-way within this module; no unlisting operation exists.
func (e *Engine) ListBusiness(owner [20]byte) (*Business, error) {
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
	if business.PricePerShare == 0 {
		return nil, ErrInvalidPrice
	}
	if !business.MintInitialized() {
		return nil, ErrMintNotInitialized
	}
	if business.Listed {
		return nil, ErrBusinessAlreadyListed
	}
	business.Listed = true
	if err := e.state.EquityBusinessPut(addr, business); err != nil {
		return nil, err
	}
	e.emit(BusinessListedEvent(addr))
	return business.Clone(), nil
}
