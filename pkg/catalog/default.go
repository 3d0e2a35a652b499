package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed catalogs/default.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded default catalog. It is parsed once and shared.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultYAML)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("embedded catalog: %w", defaultErr)
		}
	})
	return defaultCat, defaultErr
}

// MustDefault returns the embedded default catalog and panics if it is invalid.
// The embedded catalog is covered by tests, so this only fails on a broken build.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load returns the catalog at path, or the default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
