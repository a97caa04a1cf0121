// Package queue defines security event payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// ReuseQueueName is the durable queue carrying token-reuse events.
const ReuseQueueName = "auth.token_reuse"

// TokenReuseEvent is published when a cryptographically valid refresh token
// is replayed after rotation — the theft signal. By the time the event is
// published, the subject's entire session set has already been cleared;
// consumers record, alert, or feed analytics, they do not enforce.
type TokenReuseEvent struct {
	Subject    string `json:"subject"`
	DetectedAt string `json:"detected_at"`
}
