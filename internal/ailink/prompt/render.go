package prompt

import (
	"fmt"
	"strings"
)

// Rendered is a prompt ready to send.
type Rendered struct {
	System string
	User   string
}

// Render executes both templates with vars.
//
// When the prompt declares language variants, vars["language"] selects one
// and it is exposed to the templates as language_instruction. An unknown or
// empty language falls back to the taglish variant.
func (p *Prompt) Render(vars map[string]string) (Rendered, error) {
	if p == nil || p.system == nil || p.user == nil {
		return Rendered{}, fmt.Errorf("prompt not loaded")
	}

	data := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		data[k] = v
	}

	for _, name := range p.Config.Input.RequiredVariables {
		if strings.TrimSpace(vars[name]) == "" {
			return Rendered{}, fmt.Errorf("prompt %s: missing variable %q", p.Config.Slug, name)
		}
	}

	if len(p.Config.LanguageVariants) > 0 {
		instruction, ok := p.Config.LanguageVariants[strings.ToLower(vars["language"])]
		if !ok {
			instruction = p.Config.LanguageVariants["taglish"]
		}
		data["language_instruction"] = instruction
	}

	var sys, usr strings.Builder
	if err := p.system.Execute(&sys, data); err != nil {
		return Rendered{}, fmt.Errorf("render %s system: %w", p.Config.Slug, err)
	}
	if err := p.user.Execute(&usr, data); err != nil {
		return Rendered{}, fmt.Errorf("render %s user: %w", p.Config.Slug, err)
	}
	return Rendered{System: strings.TrimSpace(sys.String()), User: strings.TrimSpace(usr.String())}, nil
}
