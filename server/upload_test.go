package server

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFiles() []UploadFile {
	return []UploadFile{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("alpha")},
		{Name: "b.png", ContentType: "image/png", Data: []byte("beta")},
		{Name: "c.pdf", ContentType: "application/pdf", Data: []byte("gamma")},
	}
}

func TestSubmitInstructionPreservesFileOrder(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

	urls, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "desc", testFiles())
	require.NoError(t, err)
	require.Len(t, urls, 3)

	// One URL per file, in submission order.
	require.Len(t, blobs.keys, 3)
	for i, name := range []string{"a.txt", "b.png", "c.pdf"} {
		assert.True(t, strings.HasSuffix(blobs.keys[i], "_"+name), "key %q should end with %q", blobs.keys[i], name)
		assert.Equal(t, "https://blobs.example.com/"+blobs.keys[i], urls[i])
	}
	assert.Equal(t, []string{"text/plain", "image/png", "application/pdf"}, blobs.contentTypes)

	instruction, err := store.GetInstruction(context.Background(), "spa1", "Guide1")
	require.NoError(t, err)
	assert.Equal(t, urls, instruction.FileURLs)
	assert.Equal(t, "desc", instruction.Description)
}

func TestSubmitInstructionBlobKeysAreUnique(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

	files := []UploadFile{{Name: "same.txt", ContentType: "text/plain", Data: []byte("x")}}
	_, err := uploader.SubmitInstruction(context.Background(), "spa1", "First", "d", files)
	require.NoError(t, err)
	_, err = uploader.SubmitInstruction(context.Background(), "spa1", "Second", "d", files)
	require.NoError(t, err)

	require.Len(t, blobs.keys, 2)
	assert.NotEqual(t, blobs.keys[0], blobs.keys[1])

	// The prefix before the original name is a v4 UUID.
	for _, key := range blobs.keys {
		prefix, _, found := strings.Cut(key, "_")
		require.True(t, found)
		_, err := uuid.Parse(prefix)
		assert.NoError(t, err, "key prefix %q should be a UUID", prefix)
	}
}

func TestSubmitInstructionValidation(t *testing.T) {
	tests := []struct {
		name        string
		studio      string
		title       string
		description string
		files       []UploadFile
	}{
		{"missing studio", "", "Guide1", "desc", testFiles()},
		{"missing title", "spa1", "", "desc", testFiles()},
		{"missing description", "spa1", "Guide1", "", testFiles()},
		{"no files", "spa1", "Guide1", "desc", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			blobs := newFakeBlobStore()
			uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

			_, err := uploader.SubmitInstruction(context.Background(), tc.studio, tc.title, tc.description, tc.files)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected a validation error, got %v", err)

			// No side effects on validation failure.
			assert.Zero(t, blobs.calls)
			assert.Empty(t, store.instructions)
		})
	}
}

func TestSubmitInstructionFailFastOnUploadError(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	blobs.failAt = 1
	uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

	_, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "desc", testFiles())
	require.Error(t, err)
	assert.False(t, IsValidation(err))

	// The first blob is orphaned, the third was never attempted, and no
	// instruction document was committed.
	assert.Equal(t, 2, blobs.calls)
	assert.Len(t, blobs.keys, 1)
	assert.Empty(t, store.instructions)
}

func TestSubmitInstructionNoURLsOnCommitFailure(t *testing.T) {
	store := newMemStore()
	store.failSetInstruction = true
	blobs := newFakeBlobStore()
	uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

	_, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "desc", testFiles())
	require.Error(t, err)
	assert.Empty(t, store.instructions)
}

func TestSubmitInstructionOverwritesSameKey(t *testing.T) {
	store := newMemStore()
	blobs := newFakeBlobStore()
	uploader := NewUploader(store, blobs, &NoOpCache{}, testLogger())

	first, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "old",
		[]UploadFile{{Name: "old.txt", ContentType: "text/plain", Data: []byte("1")}})
	require.NoError(t, err)

	second, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "new", testFiles())
	require.NoError(t, err)

	instructions, err := store.ListInstructions(context.Background())
	require.NoError(t, err)
	require.Len(t, instructions, 1)
	assert.Equal(t, "new", instructions[0].Description)
	assert.Equal(t, second, instructions[0].FileURLs)
	assert.NotContains(t, instructions[0].FileURLs, first[0])
}

func TestSubmitInstructionInvalidatesCache(t *testing.T) {
	store := newMemStore()
	cache := &recordingCache{}
	uploader := NewUploader(store, newFakeBlobStore(), cache, testLogger())

	_, err := uploader.SubmitInstruction(context.Background(), "spa1", "Guide1", "desc", testFiles())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)
}
