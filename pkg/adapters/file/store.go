package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/xcallback/pkg/domain"
)

const ext = ".json"

// Journal implements ports.Journal using the local filesystem.
// Each pending request is one JSON file in BasePath, so requests survive a
// restart of the process that sent them.
type Journal struct {
	BasePath string
}

// NewJournal creates a Journal rooted at basePath.
// If basePath is empty, it defaults to ".xcallback/pending".
func NewJournal(basePath string) *Journal {
	if basePath == "" {
		basePath = filepath.Join(".xcallback", "pending")
	}
	return &Journal{BasePath: basePath}
}

func (j *Journal) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("request id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid request id %q", id)
	}
	return filepath.Join(j.BasePath, id+ext), nil
}

// Save writes the record atomically: temp file, fsync, rename.
func (j *Journal) Save(ctx context.Context, rec domain.PendingRecord) error {
	destPath, err := j.path(rec.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(j.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure journal directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(j.BasePath, "tmp-"+rec.ID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to replace existing record: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads one record.
func (j *Journal) Load(ctx context.Context, id string) (domain.PendingRecord, error) {
	filePath, err := j.path(id)
	if err != nil {
		return domain.PendingRecord{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.PendingRecord{}, domain.ErrRecordNotFound
		}
		return domain.PendingRecord{}, fmt.Errorf("failed to read record: %w", err)
	}

	var rec domain.PendingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.PendingRecord{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// Delete removes a record. Missing records are not an error.
func (j *Journal) Delete(ctx context.Context, id string) error {
	filePath, err := j.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns the ids of all journaled requests.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(j.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	return ids, nil
}
