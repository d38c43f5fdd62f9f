package prompt

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNotFound is returned by Get when no prompt carries the slug.
var ErrNotFound = errors.New("prompt not found")

// Registry resolves prompts by slug.
type Registry interface {
	Get(slug string) (*Prompt, error)
}

// Set is the prompt Registry used by the guide service: the embedded prompts,
// optionally replaced slug by slug from an operator directory.
type Set struct {
	bySlug     map[string]*Prompt
	overridden map[string]bool
}

// NewSet indexes prompts by slug. A blank or repeated slug is an error.
func NewSet(prompts []*Prompt) (*Set, error) {
	set := &Set{bySlug: make(map[string]*Prompt, len(prompts)), overridden: map[string]bool{}}
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		switch {
		case slug == "":
			return nil, fmt.Errorf("prompt %s: missing slug", p.Source)
		case set.bySlug[slug] != nil:
			return nil, fmt.Errorf("prompt %s: duplicate slug %q", p.Source, slug)
		}
		set.bySlug[slug] = p
	}
	return set, nil
}

// Override swaps in operator prompts. Slugs not yet known are added.
func (s *Set) Override(prompts []*Prompt) {
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		s.bySlug[slug] = p
		s.overridden[slug] = true
	}
}

// Overridden reports whether slug came from the operator directory.
func (s *Set) Overridden(slug string) bool {
	return s != nil && s.overridden[strings.TrimSpace(slug)]
}

func (s *Set) Get(slug string) (*Prompt, error) {
	slug = strings.TrimSpace(slug)
	if s == nil || slug == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	if p, ok := s.bySlug[slug]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
}

// Slugs lists the known slugs in order.
func (s *Set) Slugs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.bySlug))
	for slug := range s.bySlug {
		out = append(out, slug)
	}
	slices.Sort(out)
	return out
}
