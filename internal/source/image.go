package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImage reports whether name carries one of the accepted extensions,
// compared case-insensitively.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ImageSource is the sorted list of candidate images directly inside a
// directory. Subdirectories are not descended into.
type ImageSource struct {
	dir   string
	paths []string
}

func NewImageSource(dir string) (*ImageSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		if !entry.Type().IsRegular() {
			// follow symlinks, skip sockets and the like
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return &ImageSource{dir: dir, paths: paths}, nil
}

func (s *ImageSource) Dir() string { return s.dir }

func (s *ImageSource) Count() int {
	return len(s.paths)
}

func (s *ImageSource) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Collisions groups inputs that would be written to the same output file,
// e.g. "a.jpg" and "a.png". Only groups with more than one member are
// returned.
func (s *ImageSource) Collisions(outDir string) map[string][]string {
	byOutput := make(map[string][]string)
	for _, p := range s.paths {
		out := OutputPath(outDir, p)
		byOutput[out] = append(byOutput[out], p)
	}
	for out, inputs := range byOutput {
		if len(inputs) < 2 {
			delete(byOutput, out)
		}
	}
	return byOutput
}
