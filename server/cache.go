package server

import (
	"context"
)

// Cache defines the caching operations for the full-instruction scan shared
// by the listing and search endpoints
type Cache interface {
	GetInstructions(ctx context.Context) ([]*Instruction, error)
	SetInstructions(ctx context.Context, instructions []*Instruction) error
	InvalidateInstructions(ctx context.Context) error
}

// NoOpCache implements the Cache interface but does nothing
type NoOpCache struct{}

// GetInstructions returns a not found error
func (c *NoOpCache) GetInstructions(ctx context.Context) ([]*Instruction, error) {
	return nil, ErrNotFound
}

// SetInstructions does nothing
func (c *NoOpCache) SetInstructions(ctx context.Context, instructions []*Instruction) error {
	return nil
}

// InvalidateInstructions does nothing
func (c *NoOpCache) InvalidateInstructions(ctx context.Context) error {
	return nil
}
