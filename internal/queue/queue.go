// Package queue defines the job-queue client contract — long-poll receive,
// delete, extend-visibility — and ships an in-memory double for local runs
// and tests. A deployment supplies the real cloud-queue Client.
package queue

import "context"

// Message is one queue delivery.
type Message struct {
	Body    string // expected to be a game id
	Receipt string
}

// Client is the job-queue collaborator contract.
type Client interface {
	Receive(ctx context.Context, maxMessages int, longPollSeconds int, visibilityTimeoutSeconds int) ([]Message, error)
	Delete(ctx context.Context, receipt string) error
	ExtendVisibility(ctx context.Context, receipt string, seconds int) error
}
