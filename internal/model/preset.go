package model

import (
	"time"

	"github.com/google/uuid"
)

// Preset is a named set of export settings that can be applied to any
// project. It carries settings only, never images.
type Preset struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	CreatedAt        string       `json:"created_at"`
	UpdatedAt        string       `json:"updated_at"`
	Settings         PackSettings `json:"settings"`
	DescriptorFormat string       `json:"descriptor_format"`
	ExportFolder     string       `json:"export_folder,omitempty"`
}

func NewPreset(name, description string, settings PackSettings, format string) Preset {
	now := time.Now().UTC().Format(time.RFC3339)
	return Preset{
		ID:               uuid.New().String()[:8],
		Name:             name,
		Description:      description,
		CreatedAt:        now,
		UpdatedAt:        now,
		Settings:         settings,
		DescriptorFormat: format,
	}
}

// ApplyTo copies the preset's settings into a project. The export folder is
// only overwritten when the preset names one.
func (p Preset) ApplyTo(proj *Project) {
	proj.Padding = p.Settings.Padding
	if p.ExportFolder != "" {
		proj.ExportFolder = p.ExportFolder
	}
}

// PresetStore holds a collection of presets.
type PresetStore struct {
	Presets []Preset `json:"presets"`
}

func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []Preset{},
	}
}

// Put adds a preset, replacing any existing preset with the same name.
func (ps *PresetStore) Put(p Preset) {
	if existing := ps.FindByName(p.Name); existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		*existing = p
		return
	}
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID or name. Returns true if found and removed.
func (ps *PresetStore) Remove(idOrName string) bool {
	for i, p := range ps.Presets {
		if p.ID == idOrName || p.Name == idOrName {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (ps *PresetStore) FindByID(id string) *Preset {
	for i := range ps.Presets {
		if ps.Presets[i].ID == id {
			return &ps.Presets[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *Preset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}
