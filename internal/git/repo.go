package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Change represents a file change in git
type Change struct {
	Path   string // absolute
	Status string // A(dded), M(odified), D(eleted), R(enamed), ?(untracked)
}

// Deleted reports whether the file no longer exists in the work tree.
func (c Change) Deleted() bool {
	return strings.HasPrefix(c.Status, "D")
}

// GetRepoRoot returns the root directory of the git repository containing dir.
func GetRepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %s", dir)
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles returns the files that differ from HEAD in the repository
// containing dir: unstaged and staged changes plus untracked files.
func ChangedFiles(ctx context.Context, dir string) ([]Change, error) {
	root, err := GetRepoRoot(ctx, dir)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]Change)

	for _, args := range [][]string{
		{"diff", "--name-status"},
		{"diff", "--cached", "--name-status"},
	} {
		out, err := run(ctx, root, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to get git changes: %w", err)
		}
		for _, c := range parseNameStatus(out, root) {
			byPath[c.Path] = c
		}
	}

	out, err := run(ctx, root, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(line))
		byPath[path] = Change{Path: path, Status: "?"}
	}

	changes := make([]Change, 0, len(byPath))
	for _, c := range byPath {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// parseNameStatus parses `git diff --name-status` output. Renames report
// the new path.
func parseNameStatus(output, root string) []Change {
	var changes []Change
	for _, line := range strings.Split(output, "\n") {
		parts := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}

		status := parts[0]
		path := parts[len(parts)-1]
		changes = append(changes, Change{
			Path:   filepath.Join(root, filepath.FromSlash(path)),
			Status: status,
		})
	}
	return changes
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ChangedFilesUnder returns the existing changed files below root whose
// extension is one of exts (with the dot; all files when empty). Paths are
// joined to root as given, even when git reports them below a resolved
// symlink.
func ChangedFilesUnder(ctx context.Context, root string, exts ...string) ([]string, error) {
	changes, err := ChangedFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}

	var files []string
	for _, c := range changes {
		if c.Deleted() || !hasExt(c.Path, exts) {
			continue
		}
		rel, err := filepath.Rel(realRoot, c.Path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		files = append(files, filepath.Join(root, rel))
	}
	return files, nil
}

func hasExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
