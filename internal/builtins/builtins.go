// Package builtins links every built-in plugin into the runtime registry.
package builtins

import (
	_ "github.com/xirelogy/go-biscuit/internal/builtins/error"
	_ "github.com/xirelogy/go-biscuit/internal/builtins/length"
	_ "github.com/xirelogy/go-biscuit/internal/builtins/str"
	_ "github.com/xirelogy/go-biscuit/internal/builtins/typeof"
)
