// Package fsresolve maps a dotted ModuleName to a source file on disk and
// reads it. It is deliberately uncached: the coordinator already
// guarantees each module is resolved at most once via its `started` set,
// so a resolver-level cache would only duplicate that bookkeeping.
package fsresolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-lang/lumen/internal/modid"
)

// SourceExt is the canonical Lumen source file extension.
const SourceExt = ".lum"

// NotFoundError reports that a module's file does not exist under src_dir.
type NotFoundError struct {
	Module modid.ModuleName
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %s: file not found at %s", e.Module, e.Path)
}

// IOError wraps a non-not-found filesystem failure (permissions, a
// directory where a file was expected, and so on).
type IOError struct {
	Module modid.ModuleName
	Path   string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Resolver maps ModuleNames to file paths, preferring srcDir and falling
// back to stdlibDir — the project's own modules shadow a stdlib module of
// the same name, matching how LUMEN_PATH/LUMEN_STDLIB are documented to
// interact in internal/config.
type Resolver struct {
	srcDir    string
	stdlibDir string
}

// New builds a Resolver rooted at srcDir with no stdlib fallback.
func New(srcDir string) *Resolver {
	return &Resolver{srcDir: srcDir}
}

// NewWithStdlib builds a Resolver that searches srcDir first and falls
// back to stdlibDir when a module isn't found there. An empty stdlibDir
// disables the fallback, equivalent to New.
func NewWithStdlib(srcDir, stdlibDir string) *Resolver {
	return &Resolver{srcDir: srcDir, stdlibDir: stdlibDir}
}

// PathFor computes the filesystem path for a ModuleName under root by
// replacing dots with the OS path separator and appending SourceExt:
// `A.B.C` under root resolves to `root/A/B/C.lum`.
func PathFor(root string, name modid.ModuleName) string {
	segments := strings.Split(string(name), ".")
	parts := append([]string{root}, segments...)
	return filepath.Join(parts...) + SourceExt
}

// PathFor computes name's path under this Resolver's srcDir, ignoring any
// stdlib fallback — useful for error messages that should name the
// primary location a module was expected at.
func (r *Resolver) PathFor(name modid.ModuleName) string {
	return PathFor(r.srcDir, name)
}

// Read resolves name to a path and reads its contents, trying srcDir
// first and stdlibDir second when configured. The returned path is
// whichever location actually produced data; on failure it is the last
// location tried (stdlibDir's when the fallback is configured and srcDir
// had no file, srcDir's otherwise). *NotFoundError or *IOError report the
// failure.
func (r *Resolver) Read(name modid.ModuleName) ([]byte, string, error) {
	primary := PathFor(r.srcDir, name)
	data, err := os.ReadFile(primary)
	if err == nil {
		return data, primary, nil
	}
	if !os.IsNotExist(err) {
		return nil, primary, &IOError{Module: name, Path: primary, Err: err}
	}
	if r.stdlibDir == "" {
		return nil, primary, &NotFoundError{Module: name, Path: primary}
	}

	fallback := PathFor(r.stdlibDir, name)
	data, ferr := os.ReadFile(fallback)
	if ferr != nil {
		if os.IsNotExist(ferr) {
			return nil, fallback, &NotFoundError{Module: name, Path: fallback}
		}
		return nil, fallback, &IOError{Module: name, Path: fallback, Err: ferr}
	}
	return data, fallback, nil
}
