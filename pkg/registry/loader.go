// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"deckhand-cli/pkg/modulefile"
)

// ErrContentNotFound is the sentinel error wrapped by ContentNotFoundError.
var ErrContentNotFound = errors.New("module content not found")

type (
	// Loader fetches the raw module definition document for a resolved
	// registry entry. The generation core treats every load as a single
	// synchronous call; implementations may block on disk or network.
	Loader interface {
		// Load returns the raw module.yml content for the given module at the
		// given pinned version.
		Load(ctx context.Context, name modulefile.ModuleName, version modulefile.Version) ([]byte, error)
	}

	// ContentNotFoundError is returned when a loader cannot locate the
	// definition document for a module.
	ContentNotFoundError struct {
		Name    modulefile.ModuleName
		Version modulefile.Version
		Path    string
	}

	// DirLoader loads module definitions from a local modules directory laid
	// out as <root>/<name>/module.yml. The pinned version is verified against
	// the document by the graph builder, not here.
	DirLoader struct {
		// Root is the modules directory.
		Root string
	}
)

// Error implements the error interface.
func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("module %s@%s: definition not found at %s", e.Name, e.Version, e.Path)
}

// Unwrap returns ErrContentNotFound so callers can use errors.Is for
// programmatic detection.
func (e *ContentNotFoundError) Unwrap() error { return ErrContentNotFound }

// NewDirLoader creates a DirLoader rooted at the given modules directory.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{Root: root}
}

// Load implements Loader.
func (l *DirLoader) Load(ctx context.Context, name modulefile.ModuleName, version modulefile.Version) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load module %s canceled: %w", name, err)
	}

	path := filepath.Join(l.Root, string(name), modulefile.DefaultFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ContentNotFoundError{Name: name, Version: version, Path: path}
		}
		return nil, fmt.Errorf("failed to read module definition at %s: %w", path, err)
	}
	return data, nil
}
