package linter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ===== Path/Directory Helpers =====

// DefaultToolsDir returns the standard tools directory (~/.sym/tools).
// Used by all tools for a consistent installation location.
func DefaultToolsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sym", "tools")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// EnsureDir creates directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FindTool locates a tool binary, checking local path first, then global PATH.
// Returns empty string if not found.
func FindTool(localPath, globalName string) string {
	if localPath != "" {
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}
	if path, err := exec.LookPath(globalName); err == nil {
		return path
	}
	return ""
}

// EnvOverride returns the executable path set through SYMKT_<TOOL>_PATH,
// e.g. SYMKT_KTLINT_PATH. Dashes in the tool name become underscores.
func EnvOverride(tool string) string {
	return strings.TrimSpace(os.Getenv(EnvVarName(tool)))
}

// EnvVarName returns the environment variable consulted by EnvOverride.
func EnvVarName(tool string) string {
	name := strings.ToUpper(strings.ReplaceAll(tool, "-", "_"))
	return "SYMKT_" + name + "_PATH"
}

// ResolveExecutable picks the binary to run: an explicit path wins, then the
// environment override, then the installed copy, then PATH.
func ResolveExecutable(explicit, tool, installed, globalName string) string {
	if explicit != "" {
		return ExpandHome(explicit)
	}
	if env := EnvOverride(tool); env != "" {
		return ExpandHome(env)
	}
	return FindTool(installed, globalName)
}

// ===== Download Helpers =====

// DownloadFile downloads a file from URL to destPath through a temp file.
func DownloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d for URL %s", resp.StatusCode, url)
	}

	tempFile := destPath + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(tempFile)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tempFile)
		return err
	}

	if err := os.Rename(tempFile, destPath); err != nil {
		_ = os.Remove(tempFile)
		return err
	}

	return nil
}

// ExtractZip unpacks a zip archive into destDir using the system unzip.
func ExtractZip(ctx context.Context, archivePath, destDir string) error {
	if err := EnsureDir(destDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	cmd := exec.CommandContext(ctx, "unzip", "-q", "-o", archivePath, "-d", destDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("extraction failed: %w (ensure unzip is installed): %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
