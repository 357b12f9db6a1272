package obfuscator

import (
	"github.com/ticofookfook/argfuscator/internal/selector"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// TechniqueInfo describes one catalogue entry for listings.
type TechniqueInfo struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Scope       string   `json:"scope" yaml:"scope"`
	Platforms   []string `json:"platforms" yaml:"platforms"`
	Kinds       []string `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

func infoOf(t *technique.Technique) TechniqueInfo {
	info := TechniqueInfo{
		ID:          t.ID,
		Name:        t.Name,
		Scope:       t.Scope.String(),
		Platforms:   t.PlatformNames(),
		Aliases:     t.Aliases,
		Description: t.Description,
	}
	if !t.Structural() {
		info.Kinds = t.KindNames()
	}
	return info
}

// Techniques lists the catalogue in registration order. No command is
// parsed or modified.
func (octx *ObfuscationContext) Techniques() []TechniqueInfo {
	all := octx.Catalogue.All()
	out := make([]TechniqueInfo, len(all))
	for i, t := range all {
		out[i] = infoOf(t)
	}
	return out
}

// Describe returns a single technique by id or alias.
func (octx *ObfuscationContext) Describe(id string) (TechniqueInfo, error) {
	t, ok := octx.Catalogue.Lookup(id)
	if !ok {
		return TechniqueInfo{}, &selector.UnknownTechniqueError{IDs: []string{id}, Valid: octx.Catalogue.IDs()}
	}
	return infoOf(t), nil
}
