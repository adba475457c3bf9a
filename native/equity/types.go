package equity

import "strings"

// MaxBusinessNameLength bounds the registered business name.
const MaxBusinessNameLength = 50

// Config is the protocol-wide singleton created by the administrator. It is
// stored at a fixed derived address and never deleted.
type Config struct {
	Admin       [20]byte
	PaymentMint [20]byte
	Bump        uint8
}

// Clone returns a copy of the config record.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Business is the owner-keyed registry record. ShareMint stays zero until the
// share mint is initialised; Listed is a one-way flag within this module.
type Business struct {
	Owner         [20]byte
	Name          string
	ShareMint     [20]byte
	TotalShares   uint64
	PricePerShare uint64
	Treasury      [20]byte
	Listed        bool
	Bump          uint8
}

// Clone returns a copy of the business record.
func (b *Business) Clone() *Business {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// MintInitialized reports whether the business's share mint has been created.
func (b *Business) MintInitialized() bool {
	return b != nil && !isZeroAddress(b.ShareMint)
}

// Offering is the legacy escrow-path record: a fixed batch of shares placed
// for sale at a fixed price, drained until exhausted and then terminally
// deactivated.
type Offering struct {
	Business        [20]byte
	ShareMint       [20]byte
	PaymentMint     [20]byte
	PricePerShare   uint64
	RemainingShares uint64
	Active          bool
	Bump            uint8
}

// Clone returns a copy of the offering record.
func (o *Offering) Clone() *Offering {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

func sanitizeBusinessName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyBusinessName
	}
	if len(trimmed) > MaxBusinessNameLength {
		return "", ErrBusinessNameTooLong
	}
	return trimmed, nil
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}
