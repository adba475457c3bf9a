package equity

import "errors"

// Every failing check aborts the whole instruction before any state mutation
// for that check; the processor discards partial writes wholesale, so none of
// these errors ever leave half-applied records behind.
var (
	// ErrEmptyBusinessName rejects blank business names.
	ErrEmptyBusinessName = errors.New("equity: business name must not be empty")
	// ErrBusinessNameTooLong rejects names longer than MaxBusinessNameLength.
	ErrBusinessNameTooLong = errors.New("equity: business name exceeds 50 characters")
	// ErrInvalidPrice rejects zero share prices.
	ErrInvalidPrice = errors.New("equity: price per share must be greater than zero")
	// ErrInvalidShareAmount rejects zero share counts.
	ErrInvalidShareAmount = errors.New("equity: share amount must be greater than zero")
	// ErrMathOverflow signals checked 64-bit arithmetic overflow.
	ErrMathOverflow = errors.New("equity: arithmetic overflow")
	// ErrOfferingNotActive rejects purchases against unlisted businesses or exhausted offerings.
	ErrOfferingNotActive = errors.New("equity: offering is not active")
	// ErrInsufficientShares rejects purchases exceeding the available supply.
	ErrInsufficientShares = errors.New("equity: insufficient shares available")
	// ErrInvalidBusiness signals a cross-reference mismatch between records.
	ErrInvalidBusiness = errors.New("equity: business does not match record")
	// ErrInvalidBusinessOwner rejects callers that are not the stored owner.
	ErrInvalidBusinessOwner = errors.New("equity: caller is not the business owner")
	// ErrBusinessAlreadyListed rejects repeated listing.
	ErrBusinessAlreadyListed = errors.New("equity: business already listed")
	// ErrBusinessAlreadyInitialized rejects repeated share-mint initialisation.
	ErrBusinessAlreadyInitialized = errors.New("equity: share mint already initialised")
	// ErrConfigAlreadyInitialized rejects a second config initialisation.
	ErrConfigAlreadyInitialized = errors.New("equity: config already initialised")
	// ErrBusinessNotFound is returned when the referenced business does not exist.
	ErrBusinessNotFound = errors.New("equity: business not found")
	// ErrOfferingNotFound is returned when the referenced offering does not exist.
	ErrOfferingNotFound = errors.New("equity: offering not found")
	// ErrMintNotInitialized rejects operations that need the share mint before it exists.
	ErrMintNotInitialized = errors.New("equity: share mint not initialised")
	// ErrInsufficientFunds rejects purchases the buyer cannot pay for.
	ErrInsufficientFunds = errors.New("equity: insufficient balance")
	// ErrConfigNotInitialized rejects operations that need the config before it exists.
	ErrConfigNotInitialized = errors.New("equity: config not initialised")
	// ErrOfferingExists rejects a second offering for the same business and mint.
	ErrOfferingExists = errors.New("equity: offering already exists")

	errNilState   = errors.New("equity engine: state not configured")
	errZeroCaller = errors.New("equity: caller address must not be zero")
)
