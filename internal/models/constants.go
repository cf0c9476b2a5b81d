package models

const (
	StatusPending = "pending"
)

const (
	ChannelOnline = "online"
	ChannelWalkIn = "walk-in"
)

const (
	PaymentCash  = "cash"
	PaymentGcash = "gcash"
)

const (
	ExportStatusPending   = "pending"
	ExportStatusRetry     = "retry"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

const (
	// DateLayout is how stay dates are stored and exchanged.
	DateLayout = "2006-01-02"

	// DefaultDateCacheTTL bounds staleness of cached booked-date sets
	// when an invalidation is missed (seconds).
	DefaultDateCacheTTL = 5 * 60

	// ExportQueueSize is the in-memory buffer of the ledger worker.
	ExportQueueSize = 256
)
