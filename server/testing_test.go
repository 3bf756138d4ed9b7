package server

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// memStore is an in-memory Store implementation for handler and workflow
// tests. Keys mirror the document database: instructions by (studio, title),
// events by (studio, name).
type memStore struct {
	mu           sync.Mutex
	instructions map[string]*Instruction
	events       map[string]*Event
	admins       map[string]bool
	studios      map[string]bool

	failSetInstruction bool
}

func newMemStore() *memStore {
	return &memStore{
		instructions: make(map[string]*Instruction),
		events:       make(map[string]*Event),
		admins:       make(map[string]bool),
		studios:      make(map[string]bool),
	}
}

func pathKey(parent, leaf string) string {
	return parent + "\x00" + leaf
}

func (m *memStore) SetInstruction(ctx context.Context, instruction *Instruction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetInstruction {
		return errors.New("document store unavailable")
	}
	copied := *instruction
	m.instructions[pathKey(instruction.StudioName, instruction.Title)] = &copied
	return nil
}

func (m *memStore) GetInstruction(ctx context.Context, studioName, title string) (*Instruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	instruction, ok := m.instructions[pathKey(studioName, title)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *instruction
	return &copied, nil
}

func (m *memStore) DeleteInstruction(ctx context.Context, studioName, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instructions, pathKey(studioName, title))
	return nil
}

func (m *memStore) ListInstructions(ctx context.Context) ([]*Instruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	instructions := make([]*Instruction, 0, len(m.instructions))
	for _, instruction := range m.instructions {
		copied := *instruction
		instructions = append(instructions, &copied)
	}
	return instructions, nil
}

func (m *memStore) SetEvent(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *event
	m.events[pathKey(event.StudioName, event.Name)] = &copied
	return nil
}

func (m *memStore) DeleteEvent(ctx context.Context, studioName, eventName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, pathKey(studioName, eventName))
	return nil
}

func (m *memStore) ListEvents(ctx context.Context, studioName string) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*Event, 0)
	for _, event := range m.events {
		if event.StudioName == studioName {
			copied := *event
			events = append(events, &copied)
		}
	}
	return events, nil
}

func (m *memStore) ListAllEvents(ctx context.Context) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*Event, 0, len(m.events))
	for _, event := range m.events {
		copied := *event
		events = append(events, &copied)
	}
	return events, nil
}

func (m *memStore) CreateAdmin(ctx context.Context, adminID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.admins[adminID] {
		return ErrAlreadyExists
	}
	m.admins[adminID] = true
	return nil
}

func (m *memStore) ListAdmins(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.admins))
	for id := range m.admins {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) DeleteAdmin(ctx context.Context, adminID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.admins, adminID)
	return nil
}

func (m *memStore) CreateStudio(ctx context.Context, studioName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.studios[studioName] {
		return ErrAlreadyExists
	}
	m.studios[studioName] = true
	return nil
}

func (m *memStore) ListStudios(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.studios))
	for name := range m.studios {
		names = append(names, name)
	}
	return names, nil
}

func (m *memStore) DeleteStudio(ctx context.Context, studioName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.studios, studioName)
	return nil
}

// fakeBlobStore records uploads in order and can fail at a given call index.
type fakeBlobStore struct {
	mu           sync.Mutex
	keys         []string
	contentTypes []string
	calls        int
	failAt       int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{failAt: -1}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	if f.failAt >= 0 && call == f.failAt {
		return "", errors.New("blob store unavailable")
	}
	f.keys = append(f.keys, key)
	f.contentTypes = append(f.contentTypes, contentType)
	return "https://blobs.example.com/" + key, nil
}

// recordingCache counts cache traffic on top of the no-op behavior.
type recordingCache struct {
	NoOpCache
	sets          int
	invalidations int
}

func (c *recordingCache) SetInstructions(ctx context.Context, instructions []*Instruction) error {
	c.sets++
	return nil
}

func (c *recordingCache) InvalidateInstructions(ctx context.Context) error {
	c.invalidations++
	return nil
}

func testConfig() *Config {
	config := &Config{}
	config.Server.HTTPPort = 8080
	config.Server.MaxUploadBytes = 32 << 20
	config.Log.Level = "error"
	return config
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(store Store, blobs BlobStore, cache Cache) *Server {
	return newServerWith(testConfig(), store, blobs, cache, testLogger())
}
