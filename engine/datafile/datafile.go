// Package datafile loads auxiliary JSON data files at boot. Every file is
// read concurrently; any failure aborts the boot.
package datafile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nathoo/regioncore/types"
	"golang.org/x/sync/errgroup"
)

// Load reads <dir>/<file>.json for every entry and returns the decoded
// values keyed by property. The first failure cancels the remaining reads
// and is returned naming the file.
func Load(ctx context.Context, dir string, entries []types.DataFileDef) (map[string]any, error) {
	bag := make(map[string]any, len(entries))
	if len(entries) == 0 {
		return bag, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := readFile(dir, entry.File)
			if err != nil {
				return fmt.Errorf("data file %q: %w", entry.File, err)
			}
			mu.Lock()
			bag[entry.Property] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bag, nil
}

func readFile(dir, name string) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("empty file name")
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return v, nil
}

// IsLoaded reports whether every entry's property is present in bag.
func IsLoaded(bag map[string]any, entries []types.DataFileDef) bool {
	for _, e := range entries {
		if _, ok := bag[e.Property]; !ok {
			return false
		}
	}
	return true
}
