package dlmm

import "fmt"

// Error is a terminal, whole-operation-aborting failure with a stable
// numeric identity. Codes match the original deployment so that callers
// migrating from it can keep their error tables.
type Error struct {
	Code uint32
	Name string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (u%d)", e.Name, e.Code)
}

func newErr(code uint32, name string) *Error {
	return &Error{Code: code, Name: name}
}

// Core error taxonomy (1000 series).
var (
	ErrNotAuthorized             = newErr(1001, "err-not-authorized")
	ErrInvalidAmount             = newErr(1002, "err-invalid-amount")
	ErrInvalidPrincipal          = newErr(1003, "err-invalid-principal")
	ErrAlreadyAdmin              = newErr(1004, "err-already-admin")
	ErrAdminLimitReached         = newErr(1005, "err-admin-limit-reached")
	ErrAdminNotInList            = newErr(1006, "err-admin-not-in-list")
	ErrCannotRemoveDeployer      = newErr(1007, "err-cannot-remove-contract-deployer")
	ErrNoPoolData                = newErr(1008, "err-no-pool-data")
	ErrPoolNotCreated            = newErr(1009, "err-pool-not-created")
	ErrPoolDisabled              = newErr(1010, "err-pool-disabled")
	ErrPoolAlreadyCreated        = newErr(1011, "err-pool-already-created")
	ErrInvalidTokenDirection     = newErr(1016, "err-invalid-token-direction")
	ErrMatchingTokenContracts    = newErr(1017, "err-matching-token-contracts")
	ErrInvalidXToken             = newErr(1018, "err-invalid-x-token")
	ErrInvalidYToken             = newErr(1019, "err-invalid-y-token")
	ErrInvalidXAmount            = newErr(1020, "err-invalid-x-amount")
	ErrInvalidYAmount            = newErr(1021, "err-invalid-y-amount")
	ErrMinimumXAmount            = newErr(1022, "err-minimum-x-amount")
	ErrMinimumYAmount            = newErr(1023, "err-minimum-y-amount")
	ErrMinimumLpAmount           = newErr(1024, "err-minimum-lp-amount")
	ErrInvalidMinDlpAmount       = newErr(1027, "err-invalid-min-dlp-amount")
	ErrInvalidLiquidityValue     = newErr(1028, "err-invalid-liquidity-value")
	ErrInvalidFee                = newErr(1029, "err-invalid-fee")
	ErrMaximumXLiquidityFee      = newErr(1030, "err-maximum-x-liquidity-fee")
	ErrMaximumYLiquidityFee      = newErr(1031, "err-maximum-y-liquidity-fee")
	ErrNoUnclaimedProtocolFees   = newErr(1032, "err-no-unclaimed-protocol-fees-data")
	ErrMinimumBurnAmount         = newErr(1033, "err-minimum-burn-amount")
	ErrInvalidMinBurntShares     = newErr(1034, "err-invalid-min-burnt-shares")
	ErrInvalidBinStep            = newErr(1035, "err-invalid-bin-step")
	ErrAlreadyBinStep            = newErr(1036, "err-already-bin-step")
	ErrBinStepLimitReached       = newErr(1037, "err-bin-step-limit-reached")
	ErrNoBinFactors              = newErr(1038, "err-no-bin-factors")
	ErrInvalidBinFactor          = newErr(1039, "err-invalid-bin-factor")
	ErrInvalidFirstBinFactor     = newErr(1040, "err-invalid-first-bin-factor")
	ErrInvalidCenterBinFactor    = newErr(1041, "err-invalid-center-bin-factor")
	ErrUnsortedBinFactorsList    = newErr(1042, "err-unsorted-bin-factors-list")
	ErrInvalidBinFactorsLength   = newErr(1043, "err-invalid-bin-factors-length")
	ErrInvalidInitialPrice       = newErr(1044, "err-invalid-initial-price")
	ErrInvalidBinPrice           = newErr(1045, "err-invalid-bin-price")
	ErrMatchingBinID             = newErr(1046, "err-matching-bin-id")
	ErrNotActiveBin              = newErr(1047, "err-not-active-bin")
	ErrNoBinShares               = newErr(1048, "err-no-bin-shares")
	ErrVariableFeesCooldown      = newErr(1054, "err-variable-fees-cooldown")
	ErrVariableFeesManagerFrozen = newErr(1055, "err-variable-fees-manager-frozen")
	ErrPublicPoolCreationEnabled = newErr(1062, "err-public-pool-creation-enabled")
	ErrInvalidBinID              = newErr(1063, "err-invalid-bin-id")
	ErrInsufficientBalance       = newErr(1064, "err-insufficient-balance")
)

// Router error taxonomy (2000 series).
var (
	ErrNoResultData        = newErr(2001, "err-no-result-data")
	ErrBinSlippage         = newErr(2002, "err-bin-slippage")
	ErrMinimumReceived     = newErr(2003, "err-minimum-received")
	ErrNoActiveBinData     = newErr(2006, "err-no-active-bin-data")
	ErrEmptySwapsList      = newErr(2007, "err-empty-swaps-list")
	ErrResultsListOverflow = newErr(2008, "err-results-list-overflow")
)
