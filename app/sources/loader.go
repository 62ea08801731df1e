package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"contentsync/app/database"
)

// Seed declares a content source to register at startup. Seeding is
// idempotent: a source that already exists for the account and URL is
// updated, never duplicated.
type Seed struct {
	AccountID  string `yaml:"account_id"`
	Kind       string `yaml:"kind"`
	URL        string `yaml:"url"`
	Name       string `yaml:"name"`
	PushSecret string `yaml:"push_secret"`
}

// Loader reads source seed files from a directory.
type Loader struct {
	seedsDir string
}

func NewLoader(seedsDir string) *Loader {
	return &Loader{seedsDir: seedsDir}
}

// LoadAll loads every YAML seed file from the seeds directory. A missing
// directory is not an error; seeding is optional.
func (l *Loader) LoadAll() ([]Seed, error) {
	if _, err := os.Stat(l.seedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.seedsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.seedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	var seeds []Seed
	for _, file := range files {
		loaded, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		for i := range loaded {
			if err := l.validate(&loaded[i]); err != nil {
				return nil, fmt.Errorf("invalid seed %d in %s: %w", i, file, err)
			}
		}

		seeds = append(seeds, loaded...)
		slog.Debug("Loaded source seeds", "file", file, "count", len(loaded))
	}

	return seeds, nil
}

func (l *Loader) loadFile(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc struct {
		Sources []Seed `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range doc.Sources {
		if doc.Sources[i].Kind == "" {
			doc.Sources[i].Kind = database.KindFeed
		}
	}

	return doc.Sources, nil
}

func (l *Loader) validate(seed *Seed) error {
	if seed.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}
	if seed.URL == "" {
		return fmt.Errorf("url is required")
	}
	if seed.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch seed.Kind {
	case database.KindFeed:
	case database.KindGhost, database.KindWordPress:
		if seed.PushSecret == "" {
			return fmt.Errorf("push_secret is required for kind %s", seed.Kind)
		}
	default:
		return fmt.Errorf("unknown kind: %s", seed.Kind)
	}

	return nil
}

// Apply registers the seeds through the source repository.
func Apply(repo database.SourceRepository, seeds []Seed) error {
	for _, seed := range seeds {
		id, created, err := repo.UpsertSeedSource(seed.AccountID, seed.Kind, seed.URL, seed.Name, seed.PushSecret)
		if err != nil {
			return fmt.Errorf("failed to seed source %s: %w", seed.URL, err)
		}
		if created {
			slog.Info("Seeded content source", "source_id", id, "url", seed.URL, "kind", seed.Kind)
		}
	}
	return nil
}
