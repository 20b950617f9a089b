package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultPackSettings()

	if cfg.DefaultPadding != defaults.Padding {
		t.Errorf("Padding mismatch: config=%d settings=%d", cfg.DefaultPadding, defaults.Padding)
	}
	if cfg.DescriptorFormat != FormatTXT {
		t.Errorf("expected default descriptor format=txt, got %s", cfg.DescriptorFormat)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level=info, got %s", cfg.LogLevel)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToProject(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultPadding = 2
	cfg.ImageFolder = "/art/sprites"
	cfg.ExportFolder = "/build"

	p := NewProject()
	cfg.ApplyToProject(&p)

	if p.Padding != 2 {
		t.Errorf("expected Padding=2, got %d", p.Padding)
	}
	if p.ImageFolder != "/art/sprites" {
		t.Errorf("expected ImageFolder=/art/sprites, got %s", p.ImageFolder)
	}
	if p.ExportFolder != "/build" {
		t.Errorf("expected ExportFolder=/build, got %s", p.ExportFolder)
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("/a.aap")
	cfg.AddRecentProject("/b.aap")
	cfg.AddRecentProject("/a.aap")

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 recent projects, got %d", len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "/a.aap" || cfg.RecentProjects[1] != "/b.aap" {
		t.Errorf("unexpected order: %v", cfg.RecentProjects)
	}
}

func TestAddRecentProjectCapped(t *testing.T) {
	cfg := DefaultAppConfig()
	for i := 0; i < maxRecentProjects+5; i++ {
		cfg.AddRecentProject(string(rune('a'+i)) + ".aap")
	}
	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Errorf("expected %d recent projects, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"txt", "json", "yaml", "xlsx"} {
		if !ValidFormat(f) {
			t.Errorf("expected %q to be valid", f)
		}
	}
	if ValidFormat("xml") {
		t.Error("xml should not be a valid format")
	}
}
