package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Inventory errors
	ErrMsgInsufficientStock = "insufficient stock"
	ErrMsgLotEntryNotFound  = "lot entry not found"
	ErrMsgUnknownUnit       = "unknown unit"

	// Protocol errors
	ErrMsgProtocolNotFound = "growing protocol not found"
	ErrMsgInvalidProtocol  = "invalid growing protocol"

	// Requirement/aggregation errors
	ErrMsgRequirementNotFound     = "requirement record not found"
	ErrMsgAggregateNotFound       = "batch aggregate not found"
	ErrMsgAggregationIneligible   = "requirement is not eligible for aggregation"
	ErrMsgAggregateAlreadyClosed  = "batch aggregate is not in draft status"

	// Batch/transition errors
	ErrMsgBatchNotFound      = "growth batch not found"
	ErrMsgTransitionNotFound = "scheduled transition not found"
	ErrMsgUnknownStage       = "unknown growth stage"

	// Catalog errors
	ErrMsgVarietyNotFound = "variety not found"
	ErrMsgProductNotFound = "product not found"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Inventory errors
	ErrInsufficientStock = errors.New(ErrMsgInsufficientStock)
	ErrLotEntryNotFound  = errors.New(ErrMsgLotEntryNotFound)
	ErrUnknownUnit       = errors.New(ErrMsgUnknownUnit)

	// Protocol errors
	ErrProtocolNotFound = errors.New(ErrMsgProtocolNotFound)
	ErrInvalidProtocol  = errors.New(ErrMsgInvalidProtocol)

	// Requirement/aggregation errors
	ErrRequirementNotFound    = errors.New(ErrMsgRequirementNotFound)
	ErrAggregateNotFound      = errors.New(ErrMsgAggregateNotFound)
	ErrAggregationIneligible  = errors.New(ErrMsgAggregationIneligible)
	ErrAggregateAlreadyClosed = errors.New(ErrMsgAggregateAlreadyClosed)

	// Batch/transition errors
	ErrBatchNotFound      = errors.New(ErrMsgBatchNotFound)
	ErrTransitionNotFound = errors.New(ErrMsgTransitionNotFound)
	ErrUnknownStage       = errors.New(ErrMsgUnknownStage)

	// Catalog errors
	ErrVarietyNotFound = errors.New(ErrMsgVarietyNotFound)
	ErrProductNotFound = errors.New(ErrMsgProductNotFound)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
