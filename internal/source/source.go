package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentRef points at one candidate document inside a job role folder.
type DocumentRef struct {
	// Name is the bare filename, used to derive the candidate id.
	Name string
	// Path is implementation specific: a filesystem path or a download URL.
	Path string
	Size int64
}

// Source lists and fetches candidate documents for a job role. A missing
// role folder yields an empty list, not an error: an empty inbox is a normal
// state for a job posting.
type Source interface {
	List(ctx context.Context, jobRole string) ([]DocumentRef, error)
	Fetch(ctx context.Context, ref DocumentRef) ([]byte, error)
}

// resume documents the pipeline understands
var resumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// IsResumeFile reports whether the filename carries a supported resume
// extension. Listing implementations use it to skip unrelated files.
func IsResumeFile(name string) bool {
	return resumeExtensions[strings.ToLower(filepath.Ext(name))]
}

// Filesystem reads documents from <root>/<jobRole>/ on local disk.
type Filesystem struct {
	root string
}

// NewFilesystem creates a filesystem source rooted at the given directory.
func NewFilesystem(root string) (*Filesystem, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("source root directory is required")
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) List(_ context.Context, jobRole string) ([]DocumentRef, error) {
	dir := filepath.Join(f.root, jobRole)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list documents in %q: %w", dir, err)
	}

	refs := make([]DocumentRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsResumeFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", entry.Name(), err)
		}

		refs = append(refs, DocumentRef{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	return refs, nil
}

func (f *Filesystem) Fetch(_ context.Context, ref DocumentRef) ([]byte, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("fetch document %q: %w", ref.Name, err)
	}
	return data, nil
}
