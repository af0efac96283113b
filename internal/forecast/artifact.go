package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteForecast stores a forecast as indented JSON, replacing path atomically.
func WriteForecast(path string, f *Forecast) error {
	if path == "" {
		return fmt.Errorf("forecast path is required")
	}
	if f == nil {
		return fmt.Errorf("forecast is required")
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure forecast dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp forecast: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp forecast: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename forecast: %w", err)
	}
	return nil
}

// LoadForecast reads a forecast artifact written by WriteForecast.
func LoadForecast(path string) (*Forecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecast: %w", err)
	}
	var f Forecast
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if f.ID == "" {
		return nil, fmt.Errorf("forecast %s missing id", path)
	}
	if len(f.WeeklyMilestones) == 0 {
		return nil, fmt.Errorf("forecast %s has no milestones", path)
	}
	return &f, nil
}

// PathFor returns the artifact path for f inside dir.
func PathFor(dir string, f *Forecast) string {
	date := f.CreatedAt
	if len(date) >= len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}
	name := fmt.Sprintf("%s-%s-%s.json", date, sanitize(f.ID), sanitize(f.SpeciesID))
	return filepath.Join(dir, name)
}

// LatestForecastPath returns the most recent artifact in dir.
func LatestForecastPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read forecasts dir: %w", err)
	}
	var candidates []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		// YYYY-MM-DD-<uuidv7> compares lexicographically in creation order.
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no forecasts found in %s", dir)
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

func sanitize(value string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, value)
	if safe == "" {
		return "species"
	}
	return safe
}
