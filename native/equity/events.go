package equity

import (
	"encoding/hex"
	"strconv"

	"localshare/core/events"
	"localshare/core/types"
)

const (
	// EventTypeConfigInitialized is emitted when the protocol config is created.
	EventTypeConfigInitialized = "equity.config.initialized"
	// EventTypeBusinessRegistered is emitted when an owner registers a business.
	EventTypeBusinessRegistered = "equity.business.registered"
	// EventTypeBusinessRenamed is emitted when an existing business updates its name.
	EventTypeBusinessRenamed = "equity.business.renamed"
	// EventTypeOfferingConfigured is emitted when offering economics change.
	EventTypeOfferingConfigured = "equity.business.configured"
	// EventTypeShareMintInitialized is emitted when the share mint and vault are created.
	EventTypeShareMintInitialized = "equity.mint.initialized"
	// EventTypeBusinessListed is emitted when a business goes live on the marketplace.
	EventTypeBusinessListed = "equity.business.listed"
	// EventTypeSharesPurchased is emitted for every vault-backed purchase.
	EventTypeSharesPurchased = "equity.shares.purchased"
	// EventTypeOfferingCreated is emitted when shares are escrowed into an offering.
	EventTypeOfferingCreated = "equity.offering.created"
	// EventTypeOfferingPurchased is emitted for every escrow-path purchase.
	EventTypeOfferingPurchased = "equity.offering.purchased"
	// EventTypeOfferingExhausted is emitted when an offering sells out and deactivates.
	EventTypeOfferingExhausted = "equity.offering.exhausted"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func hexAddr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// ConfigInitializedEvent announces the one-time protocol configuration.
func ConfigInitializedEvent(admin, paymentMint [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeConfigInitialized,
		Attributes: map[string]string{
			"admin":       hexAddr(admin),
			"paymentMint": hexAddr(paymentMint),
		},
	}
}

// BusinessRegisteredEvent announces a newly created business record.
func BusinessRegisteredEvent(business, owner [20]byte, name string) *types.Event {
	return &types.Event{
		Type: EventTypeBusinessRegistered,
		Attributes: map[string]string{
			"business": hexAddr(business),
			"owner":    hexAddr(owner),
			"name":     name,
		},
	}
}

// BusinessRenamedEvent announces a name update on an existing business.
func BusinessRenamedEvent(business, owner [20]byte, name string) *types.Event {
	return &types.Event{
		Type: EventTypeBusinessRenamed,
		Attributes: map[string]string{
			"business": hexAddr(business),
			"owner":    hexAddr(owner),
			"name":     name,
		},
	}
}

// OfferingConfiguredEvent announces updated offering economics.
func OfferingConfiguredEvent(business [20]byte, totalShares, pricePerShare uint64, treasury [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeOfferingConfigured,
		Attributes: map[string]string{
			"business":      hexAddr(business),
			"totalShares":   formatUint(totalShares),
			"pricePerShare": formatUint(pricePerShare),
			"treasury":      hexAddr(treasury),
		},
	}
}

// ShareMintInitializedEvent announces the mint, authority and vault creation.
func ShareMintInitializedEvent(business, mint, vault [20]byte, supply uint64) *types.Event {
	return &types.Event{
		Type: EventTypeShareMintInitialized,
		Attributes: map[string]string{
			"business": hexAddr(business),
			"mint":     hexAddr(mint),
			"vault":    hexAddr(vault),
			"supply":   formatUint(supply),
		},
	}
}

// BusinessListedEvent announces the marketplace listing.
func BusinessListedEvent(business [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeBusinessListed,
		Attributes: map[string]string{
			"business": hexAddr(business),
		},
	}
}

// SharesPurchasedEvent announces a vault-backed purchase.
func SharesPurchasedEvent(business, buyer [20]byte, amount, cost, vaultRemaining uint64) *types.Event {
	return &types.Event{
		Type: EventTypeSharesPurchased,
		Attributes: map[string]string{
			"business":       hexAddr(business),
			"buyer":          hexAddr(buyer),
			"amount":         formatUint(amount),
			"cost":           formatUint(cost),
			"vaultRemaining": formatUint(vaultRemaining),
		},
	}
}

// OfferingCreatedEvent announces a new escrow offering.
func OfferingCreatedEvent(offering, business [20]byte, pricePerShare, initialShares uint64) *types.Event {
	return &types.Event{
		Type: EventTypeOfferingCreated,
		Attributes: map[string]string{
			"offering":      hexAddr(offering),
			"business":      hexAddr(business),
			"pricePerShare": formatUint(pricePerShare),
			"initialShares": formatUint(initialShares),
		},
	}
}

// OfferingPurchasedEvent announces an escrow-path purchase.
func OfferingPurchasedEvent(offering, buyer [20]byte, amount, cost, remaining uint64) *types.Event {
	return &types.Event{
		Type: EventTypeOfferingPurchased,
		Attributes: map[string]string{
			"offering":  hexAddr(offering),
			"buyer":     hexAddr(buyer),
			"amount":    formatUint(amount),
			"cost":      formatUint(cost),
			"remaining": formatUint(remaining),
		},
	}
}

// OfferingExhaustedEvent announces the terminal deactivation of an offering.
func OfferingExhaustedEvent(offering [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeOfferingExhausted,
		Attributes: map[string]string{
			"offering": hexAddr(offering),
		},
	}
}
