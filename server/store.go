package server

import (
	"context"
)

// Instruction is an uploaded instruction document, keyed by (studio, title).
// Re-writing the same key replaces the document entirely.
type Instruction struct {
	StudioName  string   `json:"studioName" bson:"studio_name"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	FileURLs    []string `json:"fileUrls" bson:"file_urls"`
}

// Event is a scheduled studio event, keyed by (studio, name). Time is the
// caller-supplied date string; it is parsed only when listings are sorted.
type Event struct {
	StudioName  string `json:"studioName" bson:"studio_name"`
	Name        string `json:"name" bson:"name"`
	Time        string `json:"time" bson:"time"`
	Description string `json:"description" bson:"description"`
}

// Store defines the document store operations used by the handlers
type Store interface {
	// Instruction operations
	SetInstruction(ctx context.Context, instruction *Instruction) error
	GetInstruction(ctx context.Context, studioName, title string) (*Instruction, error)
	DeleteInstruction(ctx context.Context, studioName, title string) error
	ListInstructions(ctx context.Context) ([]*Instruction, error)

	// Event operations
	SetEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, studioName, eventName string) error
	ListEvents(ctx context.Context, studioName string) ([]*Event, error)
	ListAllEvents(ctx context.Context) ([]*Event, error)

	// Admin allow-list operations
	CreateAdmin(ctx context.Context, adminID string) error
	ListAdmins(ctx context.Context) ([]string, error)
	DeleteAdmin(ctx context.Context, adminID string) error

	// Studio allow-list operations
	CreateStudio(ctx context.Context, studioName string) error
	ListStudios(ctx context.Context) ([]string, error)
	DeleteStudio(ctx context.Context, studioName string) error
}
