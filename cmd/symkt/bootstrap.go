package main

import (
	// Import linters for registration side-effects.
	// Each linter's register.go file contains an init() function
	// that registers the linter with the global registry.
	_ "github.com/DevSymphony/symkt/internal/linter/detekt"
	_ "github.com/DevSymphony/symkt/internal/linter/ktfmt"
	_ "github.com/DevSymphony/symkt/internal/linter/ktlint"
)
