package linter

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// ===== Errors =====

// errLinterNotFound is returned when no tool is registered under the given name.
type errLinterNotFound struct {
	ToolName string
}

func (e *errLinterNotFound) Error() string {
	return fmt.Sprintf("linter not found: %s", e.ToolName)
}

// errFormatterNotFound is returned when the tool exists but cannot format.
type errFormatterNotFound struct {
	ToolName string
}

func (e *errFormatterNotFound) Error() string {
	return fmt.Sprintf("%s does not support formatting", e.ToolName)
}

// errNilLinter is returned when trying to register a tool without a name source.
var errNilLinter = fmt.Errorf("cannot register nil linter")

// IsNotFound reports whether err came from a lookup of an unknown tool.
func IsNotFound(err error) bool {
	_, ok := err.(*errLinterNotFound)
	return ok
}

// ===== Registry =====

// ToolRegistration contains all metadata for a Kotlin tool.
type ToolRegistration struct {
	Linter     Linter    // Linter instance
	Formatter  Formatter // Formatter instance (optional)
	ConfigFile string    // Project config filename (e.g., "detekt.yml")
}

// Registry manages tool registrations.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*ToolRegistration
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// Global returns the singleton registry instance.
func Global() *Registry {
	once.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*ToolRegistration),
	}
}

// RegisterTool registers a tool with its linter, formatter, and config file.
func (r *Registry) RegisterTool(
	l Linter,
	formatter Formatter,
	configFile string,
) error {
	if l == nil {
		return errNilLinter
	}

	name := l.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Warn on duplicate registration (init order issues)
	if _, exists := r.tools[name]; exists {
		log.Printf("warning: linter already registered: %s (ignoring duplicate)", name)
		return nil
	}

	r.tools[name] = &ToolRegistration{
		Linter:     l,
		Formatter:  formatter,
		ConfigFile: configFile,
	}

	return nil
}

// GetLinter finds a linter by tool name (e.g., "detekt", "ktlint", "ktfmt").
func (r *Registry) GetLinter(toolName string) (Linter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.tools[toolName]; ok {
		return reg.Linter, nil
	}

	return nil, &errLinterNotFound{ToolName: toolName}
}

// GetFormatter returns the formatter registered for a tool.
func (r *Registry) GetFormatter(toolName string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.tools[toolName]
	if !ok {
		return nil, &errLinterNotFound{ToolName: toolName}
	}
	if reg.Formatter == nil {
		return nil, &errFormatterNotFound{ToolName: toolName}
	}
	return reg.Formatter, nil
}

// GetConfigFile returns config filename by tool name.
func (r *Registry) GetConfigFile(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.tools[name]; ok {
		return reg.ConfigFile
	}
	return ""
}

// GetAllToolNames returns all registered tool names in sorted order.
func (r *Registry) GetAllToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNamesLocked()
}

// GetFormatterNames returns the sorted names of tools that can format.
func (r *Registry) GetFormatterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name, reg := range r.tools {
		if reg.Formatter != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetAllConfigFiles returns all registered config file names.
func (r *Registry) GetAllConfigFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := make([]string, 0, len(r.tools))
	for _, name := range r.sortedNamesLocked() {
		if cf := r.tools[name].ConfigFile; cf != "" {
			files = append(files, cf)
		}
	}
	return files
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
