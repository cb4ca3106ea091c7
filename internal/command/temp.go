package command

import (
	"os"
)

// TempOptions configures where temporary resources are created.
type TempOptions struct {
	Directory string
	Prefix    string
	Suffix    string
}

// TempResource is one temporary file or directory acquired for a
// compiled command. It stays alive for the whole conversion and is
// removed by Cleanup.
type TempResource struct {
	Path  string
	IsDir bool
}

// NewTempDir creates a fresh temporary directory under opts.Directory.
func NewTempDir(opts TempOptions) (*TempResource, error) {
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, err
	}
	path, err := os.MkdirTemp(opts.Directory, opts.Prefix)
	if err != nil {
		return nil, err
	}
	return &TempResource{Path: path, IsDir: true}, nil
}

// NewTempFile creates an empty temporary file. suffix overrides the
// configured default when non-empty, which lets rules pick the
// extension an external tool expects.
func NewTempFile(opts TempOptions, suffix string) (*TempResource, error) {
	if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
		return nil, err
	}
	if suffix == "" {
		suffix = opts.Suffix
	}
	f, err := os.CreateTemp(opts.Directory, opts.Prefix+"*"+suffix)
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &TempResource{Path: path}, nil
}

// Cleanup removes the resource. Safe on nil receivers and idempotent;
// errors are ignored because cleanup runs on every exit path.
func (t *TempResource) Cleanup() {
	if t == nil || t.Path == "" {
		return
	}
	if t.IsDir {
		os.RemoveAll(t.Path)
	} else {
		os.Remove(t.Path)
	}
	t.Path = ""
}
