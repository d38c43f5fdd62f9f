package guide

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	catalogassets "github.com/govguide/govguide/internal/assets/catalog"
)

// Agency is a government office the generator knows links for.
type Agency struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Homepage    string   `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Locator     string   `yaml:"locator,omitempty" json:"locator,omitempty"`
	Appointment string   `yaml:"appointment,omitempty" json:"appointment,omitempty"`
	Actions     []string `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// Catalog is an ordered, read-only set of agencies.
type Catalog struct {
	agencies []Agency
	index    map[string]int
}

type catalogFile struct {
	Agencies []Agency `yaml:"agencies"`
}

// LoadCatalog parses a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse agency catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]int)}
	for _, a := range doc.Agencies {
		a.ID = strings.TrimSpace(a.ID)
		a.Name = strings.TrimSpace(a.Name)
		if a.ID == "" || a.Name == "" {
			return nil, fmt.Errorf("agency catalog: entry %d missing id or name", len(c.agencies))
		}
		keys := lookupKeys(a)
		for _, key := range keys {
			if strings.HasPrefix(key, "short:") {
				continue
			}
			if prev, ok := c.index[key]; ok {
				return nil, fmt.Errorf("agency catalog: %q is ambiguous between %s and %s", key, c.agencies[prev].ID, a.ID)
			}
		}
		c.agencies = append(c.agencies, a)
		for _, key := range keys {
			if _, ok := c.index[key]; !ok {
				c.index[key] = len(c.agencies) - 1
			}
		}
	}
	return c, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(catalogassets.YAML)
}

// lookupKeys are the normalized names an agency answers to: its id, its full
// name, and the short name before any parenthesized qualifier.
func lookupKeys(a Agency) []string {
	keys := []string{normalizeName(a.ID), normalizeName(a.Name)}
	if short, _, ok := strings.Cut(a.Name, "("); ok {
		if s := normalizeName(short); s != "" && s != keys[1] {
			// Several agencies share a short name (PSA); the first one wins.
			keys = append(keys, "short:"+s)
		}
	}
	return keys
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "’", "'")
	return strings.Join(strings.Fields(s), " ")
}

// Lookup finds an agency by id, full name, or short name, ignoring case.
func (c *Catalog) Lookup(name string) (Agency, bool) {
	if c == nil {
		return Agency{}, false
	}
	key := normalizeName(name)
	if key == "" {
		return Agency{}, false
	}
	if i, ok := c.index[key]; ok {
		return c.agencies[i], true
	}
	if i, ok := c.index["short:"+key]; ok {
		return c.agencies[i], true
	}
	return Agency{}, false
}

// List returns all agencies in catalog order.
func (c *Catalog) List() []Agency {
	if c == nil {
		return nil
	}
	out := make([]Agency, len(c.agencies))
	copy(out, c.agencies)
	return out
}

// Len returns the number of agencies.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.agencies)
}
