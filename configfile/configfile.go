// Package configfile reads and writes plainconfig files on disk.
//
// Writes are atomic: data goes to a temporary file in the same
// directory which is renamed over the destination, so a crash mid-write
// never leaves a half-written config behind. Files are created with
// 0600 permissions because config files routinely hold secrets.
package configfile

import (
	"bufio"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kjk/plainconfig/plainconfig"
)

// DefaultFileMode is the permission for newly written config files.
const DefaultFileMode fs.FileMode = 0o600

// Options tweaks reading and writing. The zero value (or nil) means:
// safe mode, default wrapping, 0600 permissions, no logging.
type Options struct {
	// Mode is the file permission for writes; 0 means DefaultFileMode.
	Mode fs.FileMode

	// MaxLineLen is the wrap width; 0 means the plainconfig default,
	// negative disables wrapping.
	MaxLineLen int

	// Continuations overrides the continuation candidate set.
	Continuations string

	// RewriteOld preserves lines for keys no longer in the mapping.
	RewriteOld bool

	// Unsafe enables opaque values via the Pickler. Only use with
	// trusted files.
	Unsafe bool

	// Pickler for opaque values; plainconfig.GobPickler if nil.
	Pickler plainconfig.Pickler

	// Logger for decode warnings; nil discards them.
	Logger *slog.Logger
}

// ReadFile reads and decodes a config file.
func ReadFile(path string) (map[string]any, *plainconfig.Structure, error) {
	return ReadFileOpts(path, nil)
}

// ReadFileOpts is ReadFile with explicit Options.
func ReadFileOpts(path string, opts *Options) (map[string]any, *plainconfig.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := plainconfig.NewReader(bufio.NewReader(f))
	if opts != nil {
		r.Unsafe = opts.Unsafe
		r.Pickler = opts.Pickler
		r.Logger = opts.Logger
	}
	return r.ReadAll()
}

// WriteFile writes the mapping to path, merging against structure to
// preserve the file's layout. Pass a nil structure for a fresh file.
func WriteFile(path string, db map[string]any, structure *plainconfig.Structure) error {
	return WriteFileOpts(path, db, structure, nil)
}

// WriteFileOpts is WriteFile with explicit Options.
func WriteFileOpts(path string, db map[string]any, structure *plainconfig.Structure, opts *Options) error {
	mode := DefaultFileMode
	if opts != nil && opts.Mode != 0 {
		mode = opts.Mode
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, name+".tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	didRename := false
	defer func() {
		// delete the temporary file if anything went wrong
		if !didRename {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = tmp.Chmod(mode); err != nil {
		return err
	}

	bw := bufio.NewWriter(tmp)
	w := plainconfig.NewWriter(bw)
	if opts != nil {
		if opts.MaxLineLen != 0 {
			w.MaxLineLen = opts.MaxLineLen
		}
		if opts.Continuations != "" {
			w.Continuations = opts.Continuations
		}
		w.RewriteOld = opts.RewriteOld
		w.Unsafe = opts.Unsafe
		w.Pickler = opts.Pickler
		w.Logger = opts.Logger
	}
	if err = w.WriteAll(db, structure); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return err
	}
	didRename = true

	// for extra protection against crashes elsewhere,
	// sync directory after rename; errors here are nice to have
	if fdir, err := os.Open(dir); err == nil {
		_ = fdir.Sync()
		_ = fdir.Close()
	}
	return nil
}

// Update reads path, applies fn to the mapping and writes the result
// back preserving the file's layout. A missing file starts empty.
func Update(path string, opts *Options, fn func(db map[string]any) error) error {
	db, structure, err := ReadFileOpts(path, opts)
	if os.IsNotExist(err) {
		db = map[string]any{}
		structure = nil
	} else if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	return WriteFileOpts(path, db, structure, opts)
}
