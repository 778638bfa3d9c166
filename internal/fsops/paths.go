package fsops

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolver builds absolute paths below a fixed base directory.
type Resolver struct {
	base string
}

func NewResolver(base string) *Resolver {
	return &Resolver{base: base}
}

// NewWorkingDirResolver captures the process working directory once.
func NewWorkingDirResolver() (*Resolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return NewResolver(wd), nil
}

func (r *Resolver) Base() string {
	return r.base
}

// Resolve joins the base with each segment in order. Segments are not cleaned;
// an absolute segment restarts the path from that segment.
func (r *Resolver) Resolve(segments ...string) string {
	out := r.base
	for _, seg := range segments {
		out = joinSegment(out, seg)
	}
	return out
}

func joinSegment(base, seg string) string {
	if filepath.IsAbs(seg) || base == "" {
		return seg
	}
	if os.IsPathSeparator(base[len(base)-1]) {
		return base + seg
	}
	return base + string(filepath.Separator) + seg
}
