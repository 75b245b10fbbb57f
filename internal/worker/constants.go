package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Transition Worker
// ============================================================================

// Log messages for transition worker operations
const (
	LogMsgFailedToLoadTransitionsOnStartup = "Failed to load active transitions on startup"
	LogMsgSchedulingTransitionExecution    = "Scheduling transition execution"
	LogMsgExecutingDueTransitions          = "Executing due transitions"
	LogMsgFailedToExecuteTransitions       = "Failed to execute transitions"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
