package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"omori-lab/internal/domain"
)

// CatalogFile is the on-disk JSON snapshot of an ingested catalog.
type CatalogFile struct {
	CollectedAt time.Time      `json:"collected_at"`
	Events      []domain.Event `json:"events"`
}

// SaveEvents writes a catalog snapshot to path.
func SaveEvents(path string, events []domain.Event) error {
	data, err := json.MarshalIndent(CatalogFile{
		CollectedAt: time.Now().UTC(),
		Events:      events,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}

// LoadEvents reads a catalog snapshot from path.
func LoadEvents(path string) ([]domain.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var f CatalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal catalog file: %w", err)
	}
	return f.Events, nil
}
