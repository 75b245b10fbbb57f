package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidIDParam    = "Invalid %s parameter"

	// Inventory operation error messages
	ErrMsgReplenishFailed     = "Failed to replenish lot"
	ErrMsgDeductFailed        = "Failed to deduct from lot"
	ErrMsgGetLotSummaryFailed = "Failed to get lot summary"
	ErrMsgListLotsFailed      = "Failed to list lots"

	// Planning error messages
	ErrMsgPlanOrdersFailed = "Failed to plan orders"

	// Yield error messages
	ErrMsgRecordHarvestFailed = "Failed to record harvest"
	ErrMsgGetEstimateFailed   = "Failed to estimate yield"

	// Catalog error messages
	ErrMsgReloadCatalogFailed = "Failed to reload catalog"

	// Batch error messages
	ErrMsgInvalidBatchID = "Invalid batch ID"
	ErrMsgInvalidStage   = "Invalid stage name"

	// Depletion error messages
	ErrMsgCheckLotFailed = "Failed to check lot health"
	ErrMsgSweepFailed    = "Failed to sweep lots"
)

// Success messages for API responses
// These are user-facing success messages returned in JSON responses
const (
	MsgLotReplenishedSuccess    = "Lot replenished successfully"
	MsgLotDeductedSuccess       = "Stock deducted successfully"
	MsgHarvestRecordedSuccess   = "Harvest recorded successfully"
	MsgCatalogReloadedSuccess   = "Catalog reloaded successfully"
	MsgWateringSuspendedSuccess = "Watering suspended"
	MsgRecordRemovedSuccess     = "Requirement removed from aggregate"
)
