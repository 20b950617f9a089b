package project

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/atlaspack/internal/model"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

// ─── Save / Load Tests ─────────────────────────────────────

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "art")
	if err := os.Mkdir(images, 0755); err != nil {
		t.Fatal(err)
	}

	p := model.NewProject()
	p.Padding = 1
	p.FileNames = []string{filepath.Join(images, "a.png")}
	p.ImageFolder = images
	p.ExportFolder = filepath.Join(dir, "gone")

	path := filepath.Join(dir, "ui.aap")
	if err := SaveAs(&p, path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if p.Path != path {
		t.Errorf("expected path %s, got %s", path, p.Path)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Padding != 1 || len(loaded.FileNames) != 1 || loaded.Path != path {
		t.Errorf("unexpected project: %+v", loaded)
	}
	if loaded.ImageFolder != images {
		t.Errorf("expected existing image folder kept, got %q", loaded.ImageFolder)
	}
	if loaded.ExportFolder != "" {
		t.Errorf("expected missing export folder cleared, got %q", loaded.ExportFolder)
	}
}

func TestSaveAs_WritesProjectFormat(t *testing.T) {
	p := model.NewProject()
	p.FileNames = nil
	path := filepath.Join(t.TempDir(), "atlas")

	if err := SaveAs(&p, path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if p.Path != path+".aap" {
		t.Errorf("expected extension added, got %s", p.Path)
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"id": "atlasapp"`, `"padding": 0`, `"fileNames": []`, `"imageFolder"`, `"exportFolder"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in project file:\n%s", key, data)
		}
	}
	if strings.Contains(string(data), "Images") || strings.Contains(string(data), "Path") {
		t.Errorf("runtime fields must not be persisted:\n%s", data)
	}
}

func TestSave_NoPath(t *testing.T) {
	p := model.NewProject()
	if err := Save(&p); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
}

func TestLoad_RejectsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"wrong id":   `{"id":"spritetool","padding":0}`,
		"no id":      `{"padding":0}`,
		"not json":   `padding=1`,
		"json array": `[1,2,3]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".aap")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrNotAtlasProject) {
				t.Errorf("expected ErrNotAtlasProject, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.aap"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadImages_DropsMissingAndSorts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 10, 20)
	writePNG(t, b, 5, 5)

	p := model.NewProject()
	p.FileNames = []string{b, filepath.Join(dir, "deleted.png"), a}

	result := LoadImages(&p)

	if len(result.Warnings) != 1 {
		t.Errorf("expected one warning for the missing file, got %v", result.Warnings)
	}
	if len(p.Images) != 2 || p.Images[0].Name != "a.png" || p.Images[0].Height != 20 {
		t.Errorf("unexpected images: %+v", p.Images)
	}
	if len(p.FileNames) != 2 || p.FileNames[0] != a || p.FileNames[1] != b {
		t.Errorf("unexpected file names: %v", p.FileNames)
	}
}

// ─── Image List Tests ──────────────────────────────────────

func TestAddImages_RejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	z := filepath.Join(dir, "sub", "z.png")

	p := model.NewProject()
	added, dups := AddImages(&p, []string{z, a})
	if len(added) != 2 || len(dups) != 0 {
		t.Fatalf("expected 2 added, got added=%v dups=%v", added, dups)
	}
	if p.FileNames[0] != a {
		t.Errorf("expected file names sorted by name, got %v", p.FileNames)
	}
	if p.ImageFolder != dir {
		t.Errorf("expected image folder %s, got %s", dir, p.ImageFolder)
	}

	added, dups = AddImages(&p, []string{a, a})
	if len(added) != 0 || len(dups) != 2 {
		t.Errorf("expected 2 duplicates, got added=%v dups=%v", added, dups)
	}
	if len(p.FileNames) != 2 {
		t.Errorf("expected 2 file names, got %v", p.FileNames)
	}
}

func TestRemoveImages(t *testing.T) {
	p := model.NewProject()
	p.FileNames = []string{"/art/a.png", "/art/b.png", "/other/a.png", "/art/c.png"}
	p.Images = []model.Sprite{
		model.NewSprite("/art/a.png", 1, 1),
		model.NewSprite("/art/b.png", 1, 1),
		model.NewSprite("/other/a.png", 1, 1),
		model.NewSprite("/art/c.png", 1, 1),
	}

	n, err := RemoveImages(&p, []string{"a.png", "/art/c.png"})
	if err != nil {
		t.Fatalf("RemoveImages failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
	if len(p.FileNames) != 1 || p.FileNames[0] != "/art/b.png" {
		t.Errorf("unexpected file names: %v", p.FileNames)
	}
	if len(p.Images) != 1 || p.Images[0].Path != "/art/b.png" {
		t.Errorf("unexpected images: %+v", p.Images)
	}
}

func TestRemoveImages_NothingToRemove(t *testing.T) {
	p := model.NewProject()
	p.FileNames = []string{"/art/a.png"}

	n, err := RemoveImages(&p, []string{"zzz.png"})
	if !errors.Is(err, ErrNothingToRemove) {
		t.Errorf("expected ErrNothingToRemove, got %v", err)
	}
	if n != 0 || len(p.FileNames) != 1 {
		t.Errorf("project must be unchanged, got n=%d files=%v", n, p.FileNames)
	}
}

// ─── Padding Tests ─────────────────────────────────────────

func TestTogglePadding(t *testing.T) {
	p := model.NewProject()
	if got := TogglePadding(&p); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := TogglePadding(&p); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	p.Padding = 4
	if got := TogglePadding(&p); got != 0 {
		t.Errorf("expected non-zero padding to toggle off, got %d", got)
	}
}

func TestSetPadding(t *testing.T) {
	p := model.NewProject()
	if err := SetPadding(&p, 3); err != nil || p.Padding != 3 {
		t.Errorf("expected padding 3, got %d (err %v)", p.Padding, err)
	}
	if err := SetPadding(&p, -1); !errors.Is(err, ErrInvalidPadding) {
		t.Errorf("expected ErrInvalidPadding, got %v", err)
	}
	if p.Padding != 3 {
		t.Errorf("failed set must not change padding, got %d", p.Padding)
	}
}
