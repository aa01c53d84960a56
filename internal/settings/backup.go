package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/jajaero/internal/model"
)

const backupVersion = "1"

// Backup is a portable copy of the user's preferences.
type Backup struct {
	Version     string          `json:"version"`
	CreatedAt   string          `json:"created_at"`
	Preferences model.AppConfig `json:"preferences"`
}

// ExportBackup writes prefs to a backup file at path.
func ExportBackup(path string, prefs model.AppConfig, now time.Time) error {
	backup := Backup{
		Version:     backupVersion,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Preferences: prefs,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportBackup reads a backup file written by ExportBackup. Only the current
// backup version is accepted. Fields missing from the file keep their
// default values.
func ImportBackup(path string) (Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	backup := Backup{Preferences: model.DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return Backup{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return Backup{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Version != backupVersion {
		return Backup{}, fmt.Errorf("unsupported backup version %q (expected %q)", backup.Version, backupVersion)
	}
	if backup.Preferences.RecentExports == nil {
		backup.Preferences.RecentExports = []string{}
	}
	return backup, nil
}
