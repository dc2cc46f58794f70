package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/killallgit/promptvault/pkg/config"
	"gopkg.in/yaml.v3"
)

// SaveIdentity writes the held identity to path, or removes path when the
// manager is empty
func (m *Manager) SaveIdentity(path string) error {
	id, ok := m.Identity()
	if !ok {
		return config.RemoveLocked(path)
	}

	data, err := yaml.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	return config.AtomicWrite(path, data, 0600)
}

// LoadIdentity restores the identity saved at path. A missing file leaves the
// manager empty.
func (m *Manager) LoadIdentity(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read identity: %w", err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("failed to decode identity %s: %w", path, err)
	}
	if id.ID == "" {
		return nil
	}

	m.Restore(id)
	return nil
}
