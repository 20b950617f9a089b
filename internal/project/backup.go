package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/atlaspack/internal/model"
)

// backupVersion is written into every backup file.
const backupVersion = "1.0.0"

// BackupData bundles the application config and presets into one file.
type BackupData struct {
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	Config    model.AppConfig   `json:"config"`
	Presets   model.PresetStore `json:"presets"`
}

// ExportAllData writes config and presets to a single JSON file.
func ExportAllData(exportPath string, config model.AppConfig, presets model.PresetStore) error {
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Presets:   presets,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller decides what to apply.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.DefaultPadding < 0 {
		return BackupData{}, fmt.Errorf("invalid backup file: default padding %d: %w", backup.Config.DefaultPadding, ErrInvalidPadding)
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if !model.ValidFormat(backup.Config.DescriptorFormat) {
		backup.Config.DescriptorFormat = model.FormatTXT
	}
	if backup.Presets.Presets == nil {
		backup.Presets.Presets = []model.Preset{}
	}
	for i, p := range backup.Presets.Presets {
		if p.Settings.Padding < 0 {
			return BackupData{}, fmt.Errorf("invalid backup file: preset %q padding %d: %w", p.Name, p.Settings.Padding, ErrInvalidPadding)
		}
		if !model.ValidFormat(p.DescriptorFormat) {
			backup.Presets.Presets[i].DescriptorFormat = model.FormatTXT
		}
	}
	return backup, nil
}
