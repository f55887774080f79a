package platform

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/jobboard/pkg/core"
)

// MaxUploadSize caps a single attached file.
const MaxUploadSize = 16 << 20

// ExpandUploads resolves file paths and doublestar patterns
// ("cv/**/*.pdf") into uploads. A plain path that does not exist is an
// error; a pattern that matches nothing is an error too, so typos do not
// go unnoticed. Each file is attached once, in pattern order.
func ExpandUploads(patterns []string) ([]core.Upload, error) {
	var uploads []core.Upload
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("attach %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("attach %q: no such file", pattern)
		}
		sort.Strings(matches)

		for _, path := range matches {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, err
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true

			u, err := readUpload(path)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

func readUpload(path string) (core.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.Upload{}, err
	}
	if info.Size() > MaxUploadSize {
		return core.Upload{}, fmt.Errorf("attach %s: %d bytes exceeds the %d byte limit", path, info.Size(), MaxUploadSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Upload{}, err
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return core.Upload{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
