package model

// Descriptor formats accepted by the exporter.
const (
	FormatTXT  = "txt"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// maxRecentProjects caps AppConfig.RecentProjects.
const maxRecentProjects = 10

// AppConfig holds application-wide preferences and defaults for new projects.
type AppConfig struct {
	DefaultPadding   int    `json:"default_padding"`
	ImageFolder      string `json:"image_folder"`      // Last folder images were added from
	ExportFolder     string `json:"export_folder"`     // Last folder an atlas was exported to
	DescriptorFormat string `json:"descriptor_format"` // "txt", "json", "yaml" or "xlsx"
	LogLevel         string `json:"log_level"`         // logrus level name
	HistoryPath      string `json:"history_path"`      // bbolt file; empty = <config dir>/history.db

	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	defaults := DefaultPackSettings()
	return AppConfig{
		DefaultPadding:   defaults.Padding,
		DescriptorFormat: FormatTXT,
		LogLevel:         "info",
		RecentProjects:   []string{},
	}
}

// ApplyToProject copies the configured defaults into a freshly created project.
func (c AppConfig) ApplyToProject(p *Project) {
	p.Padding = c.DefaultPadding
	p.ImageFolder = c.ImageFolder
	p.ExportFolder = c.ExportFolder
}

// AddRecentProject moves path to the front of RecentProjects.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}

// ValidFormat reports whether f is a known descriptor format.
func ValidFormat(f string) bool {
	switch f {
	case FormatTXT, FormatJSON, FormatYAML, FormatXLSX:
		return true
	}
	return false
}
