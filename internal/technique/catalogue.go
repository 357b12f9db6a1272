package technique

import (
	"fmt"
	"strings"
)

// Catalogue is an append-only registry of techniques. Registration order is
// the application order used by the composer.
type Catalogue struct {
	techniques []*Technique
	byID       map[string]*Technique
}

// NewCatalogue returns a catalogue holding every built-in technique.
func NewCatalogue() *Catalogue {
	c := &Catalogue{byID: make(map[string]*Technique)}
	for _, t := range builtins() {
		if err := c.Register(t); err != nil {
			panic(err)
		}
	}
	return c
}

func builtins() []Technique {
	return []Technique{
		optionPrefixSubstitution(),
		randomCase(),
		characterRemoval(),
		pathTraversal(),
		valueTransformation(),
		characterSubstitution(),
		characterInsertion(),
		quoteInsertion(),
		optionReordering(),
		optionStacking(),
		optionSeparatorInsertion(),
		optionSeparatorDeletion(),
	}
}

// Register adds t to the catalogue. Ids and aliases must be unique.
func (c *Catalogue) Register(t Technique) error {
	if c.byID == nil {
		c.byID = make(map[string]*Technique)
	}
	if err := t.validate(); err != nil {
		return err
	}
	keys := append([]string{t.ID}, t.Aliases...)
	for _, k := range keys {
		if _, dup := c.byID[strings.ToLower(k)]; dup {
			return fmt.Errorf("technique id '%s' is already registered", k)
		}
	}
	t.Platforms = append(t.Platforms[:0:0], t.Platforms...)
	t.Kinds = append(t.Kinds[:0:0], t.Kinds...)
	t.Aliases = append(t.Aliases[:0:0], t.Aliases...)
	stored := &t
	c.techniques = append(c.techniques, stored)
	for _, k := range keys {
		c.byID[strings.ToLower(k)] = stored
	}
	return nil
}

// Lookup finds a technique by id or alias, ignoring case.
func (c *Catalogue) Lookup(id string) (*Technique, bool) {
	t, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return t, ok
}

// All returns every technique in registration order.
func (c *Catalogue) All() []*Technique {
	out := make([]*Technique, len(c.techniques))
	copy(out, c.techniques)
	return out
}

// IDs returns the canonical ids in registration order.
func (c *Catalogue) IDs() []string {
	ids := make([]string, len(c.techniques))
	for i, t := range c.techniques {
		ids[i] = t.ID
	}
	return ids
}

// Order returns the registration position of id, or -1.
func (c *Catalogue) Order(id string) int {
	for i, t := range c.techniques {
		if t.ID == id {
			return i
		}
	}
	return -1
}
