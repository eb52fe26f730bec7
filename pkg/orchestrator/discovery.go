package orchestrator

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// ListApps returns the app folders under basePath, sorted by name.
func ListApps(ctx context.Context, documentStore store.DocumentStore, basePath, ref string) ([]string, error) {
	entries, err := documentStore.ListDir(ctx, basePath, ref)
	if err != nil {
		return nil, err
	}

	var apps []string
	for _, entry := range entries {
		if entry.Dir {
			apps = append(apps, entry.Name)
		}
	}
	sort.Strings(apps)

	return apps, nil
}

// ListValuesFiles returns the values-*.yaml files in an app folder, sorted.
func ListValuesFiles(ctx context.Context, documentStore store.DocumentStore, basePath, app, ref string) ([]string, error) {
	entries, err := documentStore.ListDir(ctx, path.Join(basePath, app), ref)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, entry := range entries {
		if entry.Dir {
			continue
		}
		name := strings.ToLower(entry.Name)
		if strings.HasPrefix(name, "values") && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			values = append(values, entry.Name)
		}
	}
	sort.Strings(values)

	return values, nil
}
