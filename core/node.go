package core

import (
	"fmt"
	"math/big"
	"sync"

	"localshare/core/types"
	"localshare/native/equity"
	"localshare/observability/metrics"
	"localshare/storage"
	"localshare/storage/statedb"
)

// Node owns the state processor and serializes all writers, giving the
// single-writer-per-state semantics the instruction set assumes. Concurrency
// is imposed from outside (RPC requests); nothing below this layer blocks.
type Node struct {
	mu        sync.Mutex
	processor *StateProcessor
	metrics   *metrics.EquityMetrics
}

// NewNode creates a node over the provided database.
func NewNode(db storage.Database) (*Node, error) {
	if db == nil {
		return nil, fmt.Errorf("core: database must not be nil")
	}
	processor, err := NewStateProcessor(statedb.New(db))
	if err != nil {
		return nil, err
	}
	return &Node{processor: processor, metrics: metrics.Equity()}, nil
}

func (n *Node) apply(op string, fn func(*equity.Engine) error) error {
	err := n.processor.Apply(fn)
	if err == nil {
		// Flush the applied writes so a restart serves the same state.
		err = n.processor.Commit()
	}
	if err != nil {
		n.metrics.InstructionFailed(op)
	}
	return err
}

// EquityInitConfig creates the protocol configuration exactly once.
func (n *Node) EquityInitConfig(admin [20]byte, paymentMint [20]byte) (*equity.Config, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var config *equity.Config
	err := n.apply("init_config", func(engine *equity.Engine) error {
		created, err := engine.InitConfig(admin, paymentMint)
		if err != nil {
			return err
		}
		config = created
		return nil
	})
	return config, err
}

// EquityRegisterBusiness creates or renames the caller's business.
func (n *Node) EquityRegisterBusiness(owner [20]byte, name string) (*equity.Business, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	existedBefore := false
	if _, ok, err := n.processor.Manager().EquityBusinessGet(businessAddr(owner)); err == nil {
		existedBefore = ok
	}
	var business *equity.Business
	err := n.apply("register_business", func(engine *equity.Engine) error {
		registered, err := engine.RegisterBusiness(owner, name)
		if err != nil {
			return err
		}
		business = registered
		return nil
	})
	if err == nil && !existedBefore {
		n.metrics.BusinessRegistered()
	}
	return business, err
}

// EquityConfigureOffering updates the offering economics for the caller's
// business and takes it off the marketplace.
func (n *Node) EquityConfigureOffering(owner [20]byte, totalShares, pricePerShare uint64, treasury [20]byte) (*equity.Business, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var business *equity.Business
	err := n.apply("configure_offering", func(engine *equity.Engine) error {
		configured, err := engine.ConfigureOffering(owner, totalShares, pricePerShare, treasury)
		if err != nil {
			return err
		}
		business = configured
		return nil
	})
	return business, err
}

// EquityInitShareMint creates the mint, authority and vault, issuing the full
// share supply into the vault.
func (n *Node) EquityInitShareMint(owner [20]byte) (*equity.Business, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var business *equity.Business
	err := n.apply("init_share_mint", func(engine *equity.Engine) error {
		initialised, err := engine.InitShareMint(owner)
		if err != nil {
			return err
		}
		business = initialised
		return nil
	})
	return business, err
}

// EquityListBusiness puts the caller's business on the marketplace.
func (n *Node) EquityListBusiness(owner [20]byte) (*equity.Business, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var business *equity.Business
	err := n.apply("list_business", func(engine *equity.Engine) error {
		listed, err := engine.ListBusiness(owner)
		if err != nil {
			return err
		}
		business = listed
		return nil
	})
	if err == nil {
		n.metrics.BusinessListed()
	}
	return business, err
}

// EquityBuyShares executes a vault-backed purchase.
func (n *Node) EquityBuyShares(buyer [20]byte, business [20]byte, amount uint64) (*equity.Purchase, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var purchase *equity.Purchase
	err := n.apply("buy_shares", func(engine *equity.Engine) error {
		receipt, err := engine.BuyShares(buyer, business, amount)
		if err != nil {
			return err
		}
		purchase = receipt
		return nil
	})
	if err == nil {
		n.metrics.SharesSold("vault", purchase.Amount, purchase.Cost)
	}
	return purchase, err
}

// EquityCreateOffering escrows shares into a legacy offering.
func (n *Node) EquityCreateOffering(owner [20]byte, pricePerShare, initialShares uint64) (*equity.Offering, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var offering *equity.Offering
	err := n.apply("create_offering", func(engine *equity.Engine) error {
		created, err := engine.CreateOffering(owner, pricePerShare, initialShares)
		if err != nil {
			return err
		}
		offering = created
		return nil
	})
	return offering, err
}

// EquityBuySharesFromOffering executes an escrow-path purchase.
func (n *Node) EquityBuySharesFromOffering(buyer [20]byte, offeringAddr [20]byte, amount uint64) (*equity.Offering, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var offering *equity.Offering
	err := n.apply("buy_shares_from_offering", func(engine *equity.Engine) error {
		updated, err := engine.BuySharesFromOffering(buyer, offeringAddr, amount)
		if err != nil {
			return err
		}
		offering = updated
		return nil
	})
	if err == nil {
		n.metrics.SharesSold("offering", amount, amount*offering.PricePerShare)
	}
	return offering, err
}

// --- Read-only queries ---

func businessAddr(owner [20]byte) [20]byte {
	addr, _ := equity.DeriveBusinessAddress(owner)
	return addr
}

// EquityConfig returns the protocol configuration, if initialised.
func (n *Node) EquityConfig() (*equity.Config, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.processor.Manager().EquityConfigGet()
}

// EquityBusiness returns the business record stored at the derived address.
func (n *Node) EquityBusiness(addr [20]byte) (*equity.Business, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.processor.Manager().EquityBusinessGet(addr)
}

// EquityBusinessByOwner resolves the owner-derived address and returns the
// business record stored there.
func (n *Node) EquityBusinessByOwner(owner [20]byte) ([20]byte, *equity.Business, bool, error) {
	addr := businessAddr(owner)
	business, ok, err := n.EquityBusiness(addr)
	return addr, business, ok, err
}

// EquityOffering returns the offering record stored at the derived address.
func (n *Node) EquityOffering(addr [20]byte) (*equity.Offering, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.processor.Manager().EquityOfferingGet(addr)
}

// EquityVaultBalance returns the unsold share count in a business's vault.
func (n *Node) EquityVaultBalance(business [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	vault, _ := equity.DeriveSharesVaultAddress(business)
	return n.processor.Manager().TokenBalance(vault)
}

// EquityTokenBalance returns the share balance of the holder's associated
// token account for the given mint.
func (n *Node) EquityTokenBalance(mint [20]byte, holder [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, _ := equity.DeriveTokenAccountAddress(mint, holder)
	return n.processor.Manager().TokenBalance(account)
}

// AccountBalance returns the native-currency balance of the address.
func (n *Node) AccountBalance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, err := n.processor.Manager().GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(account.Balance), nil
}

// FundAccount credits native currency to an address. Used for genesis and
// development funding; it bypasses the instruction set deliberately.
func (n *Node) FundAccount(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("core: funding amount must be positive")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	manager := n.processor.Manager()
	account, err := manager.GetAccount(addr[:])
	if err != nil {
		return err
	}
	account = account.Clone()
	account.Balance = new(big.Int).Add(account.Balance, amount)
	if err := manager.PutAccount(addr[:], account); err != nil {
		return err
	}
	return n.processor.Commit()
}

// Events returns the events emitted by applied instructions.
func (n *Node) Events() []types.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.processor.Events()
}
