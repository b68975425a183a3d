package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
)

// mcpServerName is the key symkt is registered under in MCP client configs.
const mcpServerName = "symkt"

// MCPRegistrationConfig represents the MCP configuration structure
// Used for Claude Code, Cursor
type MCPRegistrationConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
}

// VSCodeMCPConfig represents the VS Code MCP configuration structure
type VSCodeMCPConfig struct {
	Servers map[string]MCPServerConfig `json:"servers"`
	Inputs  []interface{}              `json:"inputs,omitempty"`
}

// MCPServerConfig represents a single MCP server configuration
type MCPServerConfig struct {
	Type    string            `json:"type,omitempty"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

var mcpApps = []struct {
	id   string
	name string
}{
	{"claude-code", "Claude Code (project)"},
	{"cursor", "Cursor (project)"},
	{"vscode", "VS Code Copilot (project)"},
}

// promptMCPRegistration asks which MCP clients should start `symkt mcp`.
func promptMCPRegistration(root string) {
	fmt.Println("\n📡 Would you like to register symkt as an MCP server?")
	fmt.Println("   (AI assistants can then lint and format Kotlin through symkt)")
	fmt.Println()

	items := make([]string, 0, len(mcpApps)+2)
	for _, app := range mcpApps {
		items = append(items, app.name)
	}
	items = append(items, "All", "Skip")

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ {{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select option",
		Items:     items,
		Templates: templates,
		Size:      len(items),
	}

	index, _, err := prompt.Run()
	if err != nil || index == len(items)-1 {
		fmt.Println("Skipped MCP registration")
		fmt.Println("\n💡 Tip: Run 'symkt init --register-mcp' to register MCP later")
		return
	}

	apps := mcpApps
	if index < len(mcpApps) {
		apps = mcpApps[index : index+1]
	}

	registered := 0
	for _, app := range apps {
		path, err := registerMCP(app.id, root)
		if err != nil {
			fmt.Printf("❌ Failed to register %s: %v\n", app.name, err)
			continue
		}
		fmt.Printf("  ✓ %s: %s\n", app.name, path)
		registered++
	}
	if registered > 0 {
		fmt.Printf("\n✅ MCP registration complete! Registered to %d app(s).\n", registered)
		fmt.Println("   Reload the apps to use symkt.")
	}
}

// registerMCP adds the symkt server to the project config of app, keeping
// other servers. An existing file is backed up to <file>.bak first.
func registerMCP(app, root string) (string, error) {
	configPath := getMCPConfigPath(app, root)
	if configPath == "" {
		return "", fmt.Errorf("unknown MCP client: %s", app)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	existing, err := os.ReadFile(configPath)
	fileExists := err == nil
	if fileExists {
		if err := os.WriteFile(configPath+".bak", existing, 0644); err != nil {
			return "", fmt.Errorf("failed to create backup: %w", err)
		}
	}

	server := MCPServerConfig{
		Command: "symkt",
		Args:    []string{"mcp", "--dir", root},
	}

	var data []byte
	if app == "vscode" {
		var cfg VSCodeMCPConfig
		if fileExists {
			// Invalid JSON is replaced; the backup keeps the original.
			_ = json.Unmarshal(existing, &cfg)
		}
		if cfg.Servers == nil {
			cfg.Servers = make(map[string]MCPServerConfig)
		}
		server.Type = "stdio"
		cfg.Servers[mcpServerName] = server
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		var cfg MCPRegistrationConfig
		if fileExists {
			_ = json.Unmarshal(existing, &cfg)
		}
		if cfg.MCPServers == nil {
			cfg.MCPServers = make(map[string]MCPServerConfig)
		}
		// For Cursor, add type field
		if app == "cursor" {
			server.Type = "stdio"
		}
		cfg.MCPServers[mcpServerName] = server
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return configPath, nil
}

// getMCPConfigPath returns the MCP config file path for the specified app
func getMCPConfigPath(app, root string) string {
	switch app {
	case "claude-code":
		return filepath.Join(root, ".mcp.json")
	case "cursor":
		return filepath.Join(root, ".cursor", "mcp.json")
	case "vscode":
		return filepath.Join(root, ".vscode", "mcp.json")
	}
	return ""
}
