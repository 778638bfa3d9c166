package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

type Kind int

const (
	KindNone Kind = iota
	KindAlreadyExists
	KindNotFound
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	default:
		return "io"
	}
}

// Result is the outcome of a filesystem operation. The zero Kind means success.
type Result struct {
	Path string
	Kind Kind
	Err  error
}

func (r Result) OK() bool {
	return r.Kind == KindNone
}

// Message renders a human readable diagnostic, empty on success.
func (r Result) Message() string {
	switch r.Kind {
	case KindNone:
		return ""
	case KindAlreadyExists:
		return fmt.Sprintf("%s already exists", r.Path)
	case KindNotFound:
		return fmt.Sprintf("%s doesn't exist", r.Path)
	default:
		return fmt.Sprintf("%s: %v", r.Path, r.Err)
	}
}

// FileSystem performs existence checks, creation, deletion and listing.
// No operation panics or returns an error; failures come back as a Result
// and are logged.
type FileSystem struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *FileSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystem{logger: logger}
}

func (f *FileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (f *FileSystem) CreateFile(path string) Result {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return f.fail(path, err)
	}
	if err := file.Close(); err != nil {
		return f.fail(path, err)
	}
	return Result{Path: path}
}

// CreateDirectory creates a single directory if nothing exists at path.
// The check and the creation are one syscall, so concurrent callers racing
// for the same path see exactly one success.
func (f *FileSystem) CreateDirectory(path string) Result {
	if err := os.Mkdir(path, 0o755); err != nil {
		return f.fail(path, err)
	}
	return Result{Path: path}
}

// EnsureDirectory creates path and any missing parents. An existing directory is success.
func (f *FileSystem) EnsureDirectory(path string) Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return f.fail(path, err)
	}
	return Result{Path: path}
}

func (f *FileSystem) DeleteFile(path string) Result {
	info, err := os.Lstat(path)
	if err != nil {
		return f.fail(path, err)
	}
	if info.IsDir() {
		return f.fail(path, fmt.Errorf("is a directory"))
	}
	if err := os.Remove(path); err != nil {
		return f.fail(path, err)
	}
	return Result{Path: path}
}

func (f *FileSystem) DeleteDirectoryRecursive(path string) Result {
	info, err := os.Lstat(path)
	if err != nil {
		return f.fail(path, err)
	}
	if !info.IsDir() {
		return f.fail(path, fmt.Errorf("not a directory"))
	}
	if err := os.RemoveAll(path); err != nil {
		return f.fail(path, err)
	}
	return Result{Path: path}
}

// ListDirectory returns entry names in the order the filesystem enumerates them.
func (f *FileSystem) ListDirectory(path string) ([]string, Result) {
	dir, err := os.Open(path)
	if err != nil {
		return []string{}, f.fail(path, err)
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return []string{}, f.fail(path, err)
	}
	return names, Result{Path: path}
}

func (f *FileSystem) fail(path string, err error) Result {
	res := Result{Path: path, Kind: kindOf(err), Err: err}
	f.logger.Warn("filesystem operation failed",
		zap.String("path", path),
		zap.Stringer("kind", res.Kind),
		zap.Error(err),
	)
	return res
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	default:
		return KindIO
	}
}
