package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadFile is one file in an instruction submission, in caller order
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploader runs the instruction submission workflow: sequential per-file
// blob uploads followed by a single metadata commit.
type Uploader struct {
	store Store
	blobs BlobStore
	cache Cache
	log   *logrus.Logger
}

// NewUploader creates a new uploader
func NewUploader(store Store, blobs BlobStore, cache Cache, log *logrus.Logger) *Uploader {
	return &Uploader{
		store: store,
		blobs: blobs,
		cache: cache,
		log:   log,
	}
}

// SubmitInstruction validates the submission, uploads each file strictly in
// input order, and commits the instruction document only after every upload
// succeeded. The returned URLs match the input file order. A failed upload
// aborts the remaining files: blobs already written stay behind in the
// bucket, but no instruction document is committed. Concurrent submissions
// for the same (studio, title) race on the final write; last writer wins.
func (u *Uploader) SubmitInstruction(ctx context.Context, studioName, title, description string, files []UploadFile) ([]string, error) {
	switch {
	case studioName == "":
		return nil, &ValidationError{Field: "studioName"}
	case title == "":
		return nil, &ValidationError{Field: "title"}
	case description == "":
		return nil, &ValidationError{Field: "description"}
	case len(files) == 0:
		return nil, &ValidationError{Field: "files"}
	}

	fileURLs := make([]string, 0, len(files))
	for _, f := range files {
		// A random prefix keeps concurrent uploads of identically named
		// files from colliding in the bucket.
		key := fmt.Sprintf("%s_%s", uuid.NewString(), f.Name)

		url, err := u.blobs.Put(ctx, key, bytes.NewReader(f.Data), f.ContentType)
		if err != nil {
			uploadsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to upload file %s: %v", f.Name, err)
		}

		filesUploadedTotal.Inc()
		fileURLs = append(fileURLs, url)
	}

	instruction := &Instruction{
		StudioName:  studioName,
		Title:       title,
		Description: description,
		FileURLs:    fileURLs,
	}
	if err := u.store.SetInstruction(ctx, instruction); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to commit instruction: %v", err)
	}

	if err := u.cache.InvalidateInstructions(ctx); err != nil {
		u.log.WithError(err).Warn("failed to invalidate instruction cache")
	}

	uploadsTotal.WithLabelValues("ok").Inc()
	u.log.WithFields(logrus.Fields{
		"studio": studioName,
		"title":  title,
		"files":  len(files),
	}).Info("instruction uploaded")

	return fileURLs, nil
}
