package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry represents a discoverable scenario file
type Entry struct {
	Name        string // Scenario name, or the file name when it failed to load
	Path        string // Path to the scenario file
	Description string
	Steps       int
	Cubes       int
	Err         error // Why the file could not be loaded, if it could not
}

// ScanDirectory scans dir for scenario files.
// Returns one Entry per *.yaml or *.yml file, sorted by file name.
func ScanDirectory(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []Entry
	for _, entry := range entries {
		// Skip directories and hidden files
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		// Only YAML files are scenarios
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		s, err := Load(path)
		if err != nil {
			// Keep broken files visible so they can be fixed
			scenarios = append(scenarios, Entry{Name: name, Path: path, Err: err})
			continue
		}
		scenarios = append(scenarios, Entry{
			Name:        s.Name,
			Path:        path,
			Description: s.Description,
			Steps:       s.Steps,
			Cubes:       len(s.Cubes),
		})
	}

	return scenarios, nil
}

// Find returns the scenario in dir whose name or file stem matches name.
func Find(dir, name string) (*Scenario, error) {
	entries, err := ScanDirectory(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		stem := strings.TrimSuffix(filepath.Base(e.Path), filepath.Ext(e.Path))
		if e.Name != name && stem != name {
			continue
		}
		if e.Err != nil {
			return nil, e.Err
		}
		return Load(e.Path)
	}
	return nil, fmt.Errorf("scenario %q not found in %s", name, dir)
}
