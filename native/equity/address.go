package equity

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Sub-account addresses are derived, never stored: a fixed module prefix plus
// a string tag plus key material is hashed into a 20-byte address and a
// disambiguation bump byte. Recomputing the tuple at the point of use doubles
// as the authorisation check, because only engine code holding the matching
// seeds can act as the derived signer.

const (
	tagConfig             = "config"
	tagBusiness           = "business"
	tagShareMint          = "share_mint"
	tagShareMintAuthority = "share_mint_authority"
	tagSharesVault        = "shares_vault"
	tagOffering           = "offering"
	tagOfferingVault      = "offering_vault"
	tagTokenAccount       = "token_account"
)

var derivePrefix = []byte("equity/")

func derive(tag string, seeds ...[]byte) ([20]byte, uint8) {
	size := len(derivePrefix) + len(tag)
	for _, seed := range seeds {
		size += len(seed)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, derivePrefix...)
	buf = append(buf, tag...)
	for _, seed := range seeds {
		buf = append(buf, seed...)
	}
	hash := ethcrypto.Keccak256(buf)
	var addr [20]byte
	copy(addr[:], hash[:20])
	return addr, hash[20]
}

// DeriveConfigAddress returns the fixed address of the singleton config record.
func DeriveConfigAddress() ([20]byte, uint8) {
	return derive(tagConfig)
}

// DeriveBusinessAddress returns the owner-keyed address of a business record.
func DeriveBusinessAddress(owner [20]byte) ([20]byte, uint8) {
	return derive(tagBusiness, owner[:])
}

// DeriveShareMintAddress returns the address of a business's share mint.
func DeriveShareMintAddress(business [20]byte) ([20]byte, uint8) {
	return derive(tagShareMint, business[:])
}

// DeriveShareMintAuthority returns the program-derived signer that controls a
// business's share mint and vault. No private key exists for this address.
func DeriveShareMintAuthority(business [20]byte) ([20]byte, uint8) {
	return derive(tagShareMintAuthority, business[:])
}

// DeriveSharesVaultAddress returns the token account custodying a business's
// unsold shares.
func DeriveSharesVaultAddress(business [20]byte) ([20]byte, uint8) {
	return derive(tagSharesVault, business[:])
}

// DeriveOfferingAddress returns the address of the legacy escrow offering for
// the given business and share mint.
func DeriveOfferingAddress(business [20]byte, shareMint [20]byte) ([20]byte, uint8) {
	return derive(tagOffering, business[:], shareMint[:])
}

// DeriveOfferingVaultAddress returns the escrow vault belonging to an offering
// record. The offering address itself acts as the vault's signing authority.
func DeriveOfferingVaultAddress(offering [20]byte) ([20]byte, uint8) {
	return derive(tagOfferingVault, offering[:])
}

// DeriveTokenAccountAddress returns the canonical associated token account for
// a holder and mint, so buyer share accounts are derivable without lookup.
func DeriveTokenAccountAddress(mint [20]byte, owner [20]byte) ([20]byte, uint8) {
	return derive(tagTokenAccount, mint[:], owner[:])
}
