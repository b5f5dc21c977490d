package templates

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document shape for built-in template definitions.
type seedFile struct {
	Templates []EmailTemplate `yaml:"templates"`
}

// LoadSeedTemplates reads template definitions from YAML files under dir in
// the given filesystem and creates any (key, application) pair that does not
// already have an active version. Existing templates are never overwritten,
// so seeding is safe to run on every startup.
//
// Returns the number of templates created.
func LoadSeedTemplates(ctx context.Context, fsys fs.FS, dir string, store Store) (int, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("read seed directory %q: %w", dir, err)
	}

	created := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		n, err := loadSeedFile(ctx, fsys, path, store)
		if err != nil {
			return created, fmt.Errorf("seed file %q: %w", path, err)
		}
		created += n
	}
	return created, nil
}

func loadSeedFile(ctx context.Context, fsys fs.FS, path string, store Store) (int, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, err
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}

	created := 0
	for _, tmpl := range seed.Templates {
		if tmpl.Key == "" {
			return created, ErrEmptyKey
		}

		// Skip pairs that already have an active version
		if _, err := store.Active(ctx, tmpl.Key, tmpl.Application); err == nil {
			continue
		}

		if _, err := store.Create(ctx, tmpl); err != nil {
			return created, fmt.Errorf("create template %q: %w", tmpl.Key, err)
		}
		created++
	}
	return created, nil
}
