// Package store is the storage collaborator used by the CLI. It only ever
// sees encrypted StoredItem documents; nothing here can read a record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"vault-engine/internal/vault"
)

var ErrNotFound = errors.New("store: item not found")

type ItemStore interface {
	Put(ctx context.Context, item *vault.StoredItem) error
	Get(ctx context.Context, id string) (*vault.StoredItem, error)
	List(ctx context.Context) ([]*vault.StoredItem, error)
	Delete(ctx context.Context, id string) error
}

// FileStore keeps one JSON document per item under a directory.
type FileStore struct{ dir string }

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".item")
}

func (f *FileStore) Put(_ context.Context, item *vault.StoredItem) error {
	b, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(item.ID), b, 0600)
}

func (f *FileStore) Get(_ context.Context, id string) (*vault.StoredItem, error) {
	b, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var item vault.StoredItem
	if err := json.Unmarshal(b, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (f *FileStore) List(_ context.Context) ([]*vault.StoredItem, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var items []*vault.StoredItem
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".item") {
			continue
		}
		item, err := f.Get(context.Background(), strings.TrimSuffix(e.Name(), ".item"))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
