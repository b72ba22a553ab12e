package store

import "time"

// Reading represents the latest sampled value of a source in storage.
//
// Reading is the storage representation of a sampled value, optimized for
// JSON serialization (used by the REST API and SSE). It is decoupled from
// the sampler's internal types to allow independent evolution.
type Reading struct {
	// Name is the source's registry key.
	Name string `json:"name"`

	// Value is the sampled value. nil indicates the source failed to
	// produce a value for this sample.
	Value *float64 `json:"value"`

	// SampledAt is the timestamp of the last sample.
	SampledAt time.Time `json:"sampled_at"`

	// Error contains the error message if the sample failed.
	// nil indicates the sample succeeded.
	Error *string `json:"error"`
}

// Store defines the interface for storing and subscribing to value readings.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores a new reading and notifies all subscribers.
	// The reading is keyed by Name, so subsequent updates replace
	// previous values.
	Update(reading Reading)

	// GetAll returns all currently stored readings.
	// The returned slice is a snapshot; modifications do not affect the store.
	GetAll() []Reading

	// Subscribe returns a channel that receives reading updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Reading

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Reading)
}
