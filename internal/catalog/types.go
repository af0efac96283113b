package catalog

import (
	"sort"

	"labdesk/internal/forecast"
)

// Source resolves species growth profiles by id.
type Source interface {
	Lookup(id string) (forecast.SpeciesProfile, bool)
}

// Document is a validated species catalog file.
type Document struct {
	Species []forecast.SpeciesProfile
	Source  string
}

// ProfileRecord maps a species id to its profile and the file it came from.
type ProfileRecord struct {
	Profile forecast.SpeciesProfile
	Source  string
}

// Catalog is the in-memory species repository built from catalog files.
type Catalog struct {
	Documents []Document

	profiles map[string]ProfileRecord
}

var _ Source = (*Catalog)(nil)

// Lookup returns the profile for the given species id, if present.
func (c *Catalog) Lookup(id string) (forecast.SpeciesProfile, bool) {
	rec, ok := c.Record(id)
	return rec.Profile, ok
}

// Record returns the profile record for the given species id, if present.
func (c *Catalog) Record(id string) (ProfileRecord, bool) {
	if c == nil {
		return ProfileRecord{}, false
	}
	rec, ok := c.profiles[id]
	return rec, ok
}

// List returns all profiles sorted by species id.
func (c *Catalog) List() []forecast.SpeciesProfile {
	if c == nil {
		return nil
	}
	out := make([]forecast.SpeciesProfile, 0, len(c.profiles))
	for _, rec := range c.profiles {
		out = append(out, rec.Profile)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SpeciesID < out[j].SpeciesID
	})
	return out
}
