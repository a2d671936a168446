package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedFormat marks export/import version mismatches and malformed
// bundle documents.
var ErrUnsupportedFormat = errors.New("vault: unsupported format")

const bundleVersion = 1

// Bundle is the versioned export container. Items are the same encrypted
// envelopes the storage collaborator holds; the document adds no plaintext.
type Bundle struct {
	Version    int           `json:"version"`
	ExportedAt string        `json:"exportedAt"`
	Items      []*StoredItem `json:"items"`
}

// ExportBundle serializes items into a single text document.
func (s *Service) ExportBundle(items []*StoredItem) ([]byte, error) {
	if _, err := s.key(); err != nil {
		return nil, err
	}
	b := Bundle{
		Version:    bundleVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Items:      items,
	}
	blob, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, err
	}
	s.audit.Appendf("export:%d", len(items))
	s.log.Info().Int("count", len(items)).Msg("bundle exported")
	return blob, nil
}

// ImportBundle parses an exported document, rejecting any version this
// build does not explicitly support.
func (s *Service) ImportBundle(blob []byte) ([]*StoredItem, error) {
	if _, err := s.key(); err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.Unmarshal(blob, &b); err != nil {
		return nil, fmt.Errorf("%w: not a bundle document", ErrUnsupportedFormat)
	}
	if b.Version != bundleVersion {
		return nil, fmt.Errorf("%w: bundle version %d", ErrUnsupportedFormat, b.Version)
	}
	s.audit.Appendf("import:%d", len(b.Items))
	s.log.Info().Int("count", len(b.Items)).Msg("bundle imported")
	return b.Items, nil
}
