// Package taskstore loads and saves each user's task document.
package taskstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/storage"
)

var errEmptyDocument = errors.New("document is empty")

// isNullDocument reports bodies both codecs decode without error into a
// zero document.
func isNullDocument(data []byte) bool {
	switch string(bytes.TrimSpace(data)) {
	case "", "null", "~":
		return true
	}
	return false
}

type Store struct {
	backend storage.Backend
	codec   storage.Codec
}

func New(backend storage.Backend, codec storage.Codec) (*Store, error) {
	if backend == nil {
		return nil, errors.New("taskstore: nil backend")
	}
	if codec == nil {
		return nil, errors.New("taskstore: nil codec")
	}
	return &Store{backend: backend, codec: codec}, nil
}

// Load returns the user's document, or an empty one when nothing is stored
// yet. A stored document that is blank, null, undecodable or fails
// validation is reported as a *storage.CorruptionError and never replaced
// with an empty one.
func (s *Store) Load(ctx context.Context, userID string) (*model.Document, error) {
	data, err := s.backend.Read(ctx, storage.KindTasks, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("load tasks for %s: %w", userID, err)
	}
	corrupt := func(err error) error {
		return &storage.CorruptionError{Kind: storage.KindTasks, Key: userID, Err: err}
	}
	if isNullDocument(data) {
		return nil, corrupt(errEmptyDocument)
	}
	doc := &model.Document{}
	if err := s.codec.Unmarshal(data, doc); err != nil {
		return nil, corrupt(err)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, corrupt(err)
	}
	return doc, nil
}

// Save replaces the stored document. Last writer wins.
func (s *Store) Save(ctx context.Context, userID string, doc *model.Document) error {
	if doc == nil {
		return errors.New("taskstore: nil document")
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save tasks for %s: %w", userID, err)
	}
	data, err := s.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode tasks for %s: %w", userID, err)
	}
	if err := s.backend.Write(ctx, storage.KindTasks, userID, data); err != nil {
		return fmt.Errorf("save tasks for %s: %w", userID, err)
	}
	return nil
}

// Users lists every user id with a stored task document.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx, storage.KindTasks)
}

// UpdatedAt reports when userID's task document was last saved.
func (s *Store) UpdatedAt(ctx context.Context, userID string) (time.Time, error) {
	return s.backend.UpdatedAt(ctx, storage.KindTasks, userID)
}
