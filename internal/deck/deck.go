// Package deck reconciles imported card sources with the store. A source is
// a local directory or a git repository of markdown deck files; reconciling
// inserts new cards, refreshes changed backs, and removes cards whose front
// disappeared from the source. Manually added cards are never touched.
package deck

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlund/cardbox/internal/gitsource"
	"github.com/mlund/cardbox/internal/parser"
	"github.com/mlund/cardbox/internal/storage"
)

// KindOf classifies a source path as a git URL or a local directory.
func KindOf(path string) string {
	if strings.HasSuffix(path, ".git") || strings.Contains(path, "git@") {
		return storage.SourceGit
	}
	if u, err := url.Parse(path); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return storage.SourceGit
	}
	return storage.SourceLocal
}

// AddSource registers a deck source, creating it if unknown. Local paths are
// made absolute so later invocations resolve them from any directory.
func AddSource(db *storage.DB, path string) (*storage.Source, error) {
	kind := KindOf(path)
	if kind == storage.SourceLocal {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot read source %s: %w", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %s is not a directory", abs)
		}
		path = abs
	}

	existing, err := db.FindSourceByPath(path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id, err := db.InsertSource(path, kind)
	if err != nil {
		return nil, err
	}
	return &storage.Source{ID: id, Path: path, Kind: kind}, nil
}

// SyncAll reconciles every registered source. Git sources are cloned or
// pulled under reposDir first. A failing source is logged and skipped so one
// broken deck does not block the rest.
func SyncAll(db *storage.DB, reposDir string) error {
	sources, err := db.AllSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		slog.Info("no sources configured")
		return nil
	}

	for _, source := range sources {
		if err := SyncOne(db, &source, reposDir); err != nil {
			slog.Error("failed to sync source", "path", source.Path, "error", err)
		}
	}
	return nil
}

// SyncOne reconciles a single source.
func SyncOne(db *storage.DB, source *storage.Source, reposDir string) error {
	slog.Info("syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

	dir := source.Path
	if source.Kind == storage.SourceGit {
		local, err := gitLocalPath(reposDir, source.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return fmt.Errorf("failed to create repos directory: %w", err)
		}
		if err := gitsource.Sync(source.Path, local); err != nil {
			return err
		}
		dir = local
	}

	return reconcile(db, source, dir)
}

// reconcile walks dir for markdown deck files and brings the source's cards
// in line with what the files contain.
func reconcile(db *storage.DB, source *storage.Source, dir string) error {
	found := make(map[string]string)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		cards, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, card := range cards {
			found[card.Front] = card.Back
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("failed to walk source %s: %w", dir, walkErr)
	}

	existing, err := db.CardsBySource(source.ID)
	if err != nil {
		return err
	}
	known := make(map[string]string, len(existing))
	for _, c := range existing {
		known[c.Front] = c.Back
	}

	var inserted, refreshed, removed int
	for front, back := range found {
		old, ok := known[front]
		switch {
		case !ok:
			err := db.InsertSourcedCard(front, back, source.ID)
			if errors.Is(err, storage.ErrDuplicateFront) {
				// The front already exists outside this source; leave it be.
				slog.Warn("skipping card owned elsewhere", "front", front)
				continue
			}
			if err != nil {
				return err
			}
			inserted++
		case old != back:
			if err := db.UpdateCardBack(front, back, source.ID); err != nil {
				return err
			}
			refreshed++
		}
	}

	for front := range known {
		if _, ok := found[front]; !ok {
			if err := db.DeleteCard(front); err != nil {
				return err
			}
			removed++
		}
	}

	if err := db.TouchSource(source.ID); err != nil {
		return err
	}

	slog.Info("source reconciled",
		"path", source.Path,
		"cards", len(found),
		"inserted", inserted,
		"refreshed", refreshed,
		"removed", removed,
	)
	return nil
}

// gitLocalPath maps a git URL to a stable clone location under baseDir.
func gitLocalPath(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err == nil && (parsed.Scheme == "https" || parsed.Scheme == "http") {
		p := strings.TrimSuffix(parsed.Path, ".git")
		return filepath.Join(baseDir, parsed.Host, p), nil
	}

	// scp-like syntax: git@host:user/repo.git
	if strings.Contains(repoURL, "@") {
		parts := strings.SplitN(repoURL, ":", 2)
		if len(parts) == 2 {
			hostAndUser := strings.SplitN(parts[0], "@", 2)
			if len(hostAndUser) == 2 {
				repoPath := strings.TrimSuffix(parts[1], ".git")
				return filepath.Join(baseDir, hostAndUser[1], repoPath), nil
			}
		}
	}

	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
