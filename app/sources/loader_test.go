package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadValidSeeds(t *testing.T) {
	tempDir := t.TempDir()

	content := `
sources:
  - account_id: "acc-1"
    url: "https://example.com/feed.xml"
    name: "Example Blog"
  - account_id: "acc-1"
    kind: "ghost"
    url: "https://ghost.example.com"
    name: "Ghost Site"
    push_secret: "s3cret"
`
	writeSeedFile(t, tempDir, "seeds.yml", content)

	loader := NewLoader(tempDir)
	seeds, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(seeds) != 2 {
		t.Fatalf("Expected 2 seeds, got %d", len(seeds))
	}
	if seeds[0].Kind != "feed" {
		t.Errorf("Expected default kind 'feed', got '%s'", seeds[0].Kind)
	}
	if seeds[1].Kind != "ghost" {
		t.Errorf("Expected kind 'ghost', got '%s'", seeds[1].Kind)
	}
	if seeds[1].PushSecret != "s3cret" {
		t.Errorf("Expected push secret to be loaded, got '%s'", seeds[1].PushSecret)
	}
}

func TestPushSeedWithoutSecretIsRejected(t *testing.T) {
	tempDir := t.TempDir()

	content := `
sources:
  - account_id: "acc-1"
    kind: "wordpress"
    url: "https://wp.example.com"
    name: "WP Site"
`
	writeSeedFile(t, tempDir, "seeds.yaml", content)

	loader := NewLoader(tempDir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for push seed without secret")
	}
}

func TestUnknownKindIsRejected(t *testing.T) {
	tempDir := t.TempDir()

	content := `
sources:
  - account_id: "acc-1"
    kind: "medium"
    url: "https://medium.example.com"
    name: "Medium Site"
`
	writeSeedFile(t, tempDir, "seeds.yaml", content)

	loader := NewLoader(tempDir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for unknown source kind")
	}
}

func TestMissingDirectoryLoadsNothing(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	seeds, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(seeds) != 0 {
		t.Errorf("Expected 0 seeds from missing directory, got %d", len(seeds))
	}
}
