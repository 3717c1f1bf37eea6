// Package explain maps rule codes to human explanations and enriches
// violation messages with them.
package explain

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/csmstyle/pkg/lint"
)

// Explanation describes one rule code.
type Explanation struct {
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description" json:"description"`
	Rationale   string `yaml:"rationale,omitempty" json:"rationale,omitempty"`
	CSMRelation string `yaml:"csmRelation,omitempty" json:"csmRelation,omitempty"`
}

// codePatterns extract a rule code from the start of a message, in order:
// pycodestyle style (E501), csmstyle style (CSM1), pylint style (C0103:).
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z]\d{3})\s`),
	regexp.MustCompile(`^([A-Z]{3}\d+)\s`),
	regexp.MustCompile(`^([A-Z]\d{4}):`),
}

// ExtractCode returns the rule code a message starts with, or "".
func ExtractCode(message string) string {
	for _, p := range codePatterns {
		if m := p.FindStringSubmatch(message); m != nil {
			return m[1]
		}
	}
	return ""
}

// Catalog holds explanations keyed by rule code.
type Catalog struct {
	entries map[string]Explanation
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]Explanation)}
}

// FromRegistry builds a catalog from the metadata of registered rules.
func FromRegistry(registry *lint.Registry) *Catalog {
	c := New()
	for _, info := range registry.Infos() {
		c.Add(Explanation{
			Code:        info.ID,
			Description: info.Description,
			Rationale:   info.Rationale,
			CSMRelation: fmt.Sprintf("Checked by csmstyle rule %s (%s).", info.ID, info.Name),
		})
	}
	return c
}

// Add stores an explanation, replacing any previous one for the code.
func (c *Catalog) Add(e Explanation) {
	c.entries[e.Code] = e
}

// LoadFile merges explanations from a YAML or JSON file shaped as
// {CODE: {code, description, rationale, csmRelation}}.
// Entries in the file override existing ones.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to read explanations: %w", err)
	}
	return c.Load(data)
}

// Load merges explanations from YAML or JSON data.
func (c *Catalog) Load(data []byte) error {
	var raw map[string]Explanation
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse explanations: %w", err)
	}
	for code, e := range raw {
		if e.Code == "" {
			e.Code = code
		}
		c.Add(e)
	}
	return nil
}

// Get returns the explanation for a code.
func (c *Catalog) Get(code string) (Explanation, bool) {
	e, ok := c.entries[code]
	return e, ok
}

// Lookup returns the explanation for the code a message starts with.
func (c *Catalog) Lookup(message string) (Explanation, bool) {
	code := ExtractCode(message)
	if code == "" {
		return Explanation{}, false
	}
	return c.Get(code)
}

// Enhance appends the explanation of the message's rule, if any.
func (c *Catalog) Enhance(message string) string {
	e, ok := c.Lookup(message)
	if !ok {
		return message
	}

	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\n---\n\n")
	b.WriteString(e.Description)
	if e.Rationale != "" {
		b.WriteString("\n\n**Rationale:** ")
		b.WriteString(e.Rationale)
	}
	if e.CSMRelation != "" {
		b.WriteString("\n\n**CSM Relation:** ")
		b.WriteString(e.CSMRelation)
	}
	return b.String()
}

// Codes returns every code in the catalog, sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.entries))
	for code := range c.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
