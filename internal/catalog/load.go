// Package catalog loads species growth profiles from YAML catalog files.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadFromDir loads and validates every species catalog file in dir.
func LoadFromDir(dir string) (*Catalog, error) {
	if dir == "" {
		dir = "species"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("scan species dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no species YAML files found in %s", dir)
	}
	sort.Strings(files)

	var docs []Document
	var vErrs ValidationErrors

	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		doc, parseErr := ParseAndValidateDocument(data, path)
		if parseErr != nil {
			var ve ValidationErrors
			if errors.As(parseErr, &ve) {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, parseErr
		}
		docs = append(docs, doc)
	}

	if len(vErrs) > 0 {
		return nil, vErrs
	}

	if dupErrs := validateCrossDocumentUniqueness(docs); len(dupErrs) > 0 {
		return nil, dupErrs
	}

	return build(docs), nil
}

// New builds a catalog from already validated documents.
func New(docs ...Document) (*Catalog, error) {
	if dupErrs := validateCrossDocumentUniqueness(docs); len(dupErrs) > 0 {
		return nil, dupErrs
	}
	return build(docs), nil
}

func validateCrossDocumentUniqueness(docs []Document) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]string)
	for _, doc := range docs {
		for idx, p := range doc.Species {
			if origin, exists := seen[p.SpeciesID]; exists {
				errs = append(errs, ValidationError{
					File:    doc.Source,
					Field:   fmt.Sprintf("species[%d].species_id", idx),
					Message: fmt.Sprintf("species_id %q already defined in %s", p.SpeciesID, origin),
				})
				continue
			}
			seen[p.SpeciesID] = doc.Source
		}
	}
	return errs
}

func build(docs []Document) *Catalog {
	c := &Catalog{
		Documents: docs,
		profiles:  make(map[string]ProfileRecord),
	}
	for _, doc := range docs {
		for _, p := range doc.Species {
			c.profiles[p.SpeciesID] = ProfileRecord{Profile: p, Source: doc.Source}
		}
	}
	return c
}
