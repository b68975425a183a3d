package diagnostic

import "sync"

// Collection holds the diagnostics currently published for one tool.
// Results of a new run replace, per file, whatever an earlier run recorded.
type Collection struct {
	name string

	mu    sync.RWMutex
	files map[string][]Diagnostic
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		name:  name,
		files: make(map[string][]Diagnostic),
	}
}

// Name returns the collection name (the tool it belongs to).
func (c *Collection) Name() string {
	return c.name
}

// Replace sets the diagnostics of every file present in byFile.
// Files absent from byFile are left untouched.
func (c *Collection) Replace(byFile ByFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for file, diags := range byFile {
		if len(diags) == 0 {
			delete(c.files, file)
			continue
		}
		c.files[file] = append([]Diagnostic(nil), diags...)
	}
}

// Delete removes the diagnostics of a single file.
func (c *Collection) Delete(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, file)
}

// Clear removes everything.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = make(map[string][]Diagnostic)
}

// Get returns a copy of the diagnostics recorded for file.
func (c *Collection) Get(file string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Diagnostic(nil), c.files[file]...)
}

// Snapshot returns a copy of the whole collection.
func (c *Collection) Snapshot() ByFile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(ByFile, len(c.files))
	for file, diags := range c.files {
		out[file] = append([]Diagnostic(nil), diags...)
	}
	return out
}

// Count returns the number of diagnostics currently recorded.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, diags := range c.files {
		n += len(diags)
	}
	return n
}
