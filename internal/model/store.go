package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact names in the store. The pair forms one versioned model bundle.
const (
	ArtifactEmbedder   = "embedder"
	ArtifactClassifier = "classifier"
)

// ErrArtifactNotFound signals that a named artifact has never been persisted.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore is the named-blob storage the bundle loads from and persists
// to. The blob format is opaque to the store; it only has to round-trip
// exactly.
type ArtifactStore interface {
	Get(name string) ([]byte, error)
	Put(name string, blob []byte) error
}

// FileStore keeps artifacts as files under a models directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the models directory if necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create models dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(name string) ([]byte, error) {
	blob, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return blob, nil
}

func (s *FileStore) Put(name string, blob []byte) error {
	if err := os.WriteFile(s.path(name), blob, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
