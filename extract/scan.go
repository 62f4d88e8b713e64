package extract

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ScanDir walks root recursively and returns the paths of all regular files,
// sorted lexically. A missing root is not an error; it yields no paths, so a
// data directory that was never created behaves like an empty one.
func ScanDir(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// ScanDirs scans each root in order and concatenates the results. Each root's
// files stay sorted; roots are not merged into one global order so the pdf,
// image and audio directories keep their grouping.
func ScanDirs(roots ...string) ([]string, error) {
	var all []string
	for _, root := range roots {
		paths, err := ScanDir(root)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}
	return all, nil
}
