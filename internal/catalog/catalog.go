// Package catalog loads and validates the pattern catalog: the read-only
// registry of risk and compliance categories that drives every analysis.
//
// A Catalog is immutable once loaded and safe for concurrent use without
// synchronization.
package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/gowebpki/jcs"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/textnorm"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://termlens.schemas.local/catalog.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error

	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Catalog is a validated, compiled set of pattern categories
type Catalog struct {
	version     string
	categories  []model.PatternCategory
	rules       [][]*regexp.Regexp // parallel to categories
	index       map[string]int
	fingerprint string
}

type catalogFile struct {
	Version    string                  `yaml:"version" json:"version"`
	Categories []model.PatternCategory `yaml:"categories" json:"categories"`
}

// Default returns the built-in catalog. It is parsed and validated once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = load(defaultCatalog, "built-in")
	})
	return defaultCat, defaultErr
}

// LoadFile reads and validates a catalog from a YAML or JSON file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return load(data, path)
}

// Load parses and validates a catalog from YAML (or JSON) bytes
func Load(data []byte) (*Catalog, error) {
	return load(data, "inline")
}

// New builds a catalog from already-decoded categories, applying the same
// validation as Load. Useful for small catalogs assembled in code.
func New(version string, categories []model.PatternCategory) (*Catalog, error) {
	return build(catalogFile{Version: version, Categories: categories}, "inline")
}

func load(data []byte, source string) (*Catalog, error) {
	if err := validateSchema(data, source); err != nil {
		return nil, err
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ValidationError{Source: source, Problems: []Problem{{Message: err.Error()}}}
	}
	return build(f, source)
}

// validateSchema checks the structural shape of the raw document
func validateSchema(data []byte, source string) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Source: source, Problems: []Problem{{Message: "parse: " + err.Error()}}}
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return &ValidationError{Source: source, Problems: []Problem{{Message: "not JSON-compatible: " + err.Error()}}}
	}
	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Source: source, Problems: []Problem{{Message: err.Error()}}}
	}

	if err := sch.Validate(doc); err != nil {
		verr := &ValidationError{Source: source}
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			collectSchemaProblems(vErr, verr)
		}
		if len(verr.Problems) == 0 {
			verr.add("", "", "%v", err)
		}
		return verr
	}
	return nil
}

func collectSchemaProblems(e *jsonschema.ValidationError, verr *ValidationError) {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		verr.add("", loc, "%s", e.Message)
		return
	}
	for _, c := range e.Causes {
		collectSchemaProblems(c, verr)
	}
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// build enforces the semantic invariants and compiles every rule
func build(f catalogFile, source string) (*Catalog, error) {
	verr := &ValidationError{Source: source}

	if strings.TrimSpace(f.Version) == "" {
		verr.add("", "version", "required")
	} else if _, err := semver.NewVersion(f.Version); err != nil {
		verr.add("", "version", "not a semantic version: %v", err)
	}
	if len(f.Categories) == 0 {
		verr.add("", "categories", "at least one category is required")
	}

	cat := &Catalog{
		version:    f.Version,
		categories: make([]model.PatternCategory, 0, len(f.Categories)),
		rules:      make([][]*regexp.Regexp, 0, len(f.Categories)),
		index:      make(map[string]int, len(f.Categories)),
	}

	for i, c := range f.Categories {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			verr.add(id, "id", "required")
		} else if _, dup := cat.index[id]; dup {
			verr.add(id, "id", "duplicate category id")
		}

		switch c.Kind {
		case model.KindRisk:
			if c.Weight >= 0 {
				verr.add(id, "weight", "risk weight must be negative, got %d", c.Weight)
			}
			if !c.Severity.Valid() {
				verr.add(id, "severity", "risk category needs severity (informational, moderate, severe)")
			}
			if c.Gap != "" {
				verr.add(id, "gap", "only compliance categories carry gap text")
			}
		case model.KindCompliance:
			if c.Weight <= 0 {
				verr.add(id, "weight", "compliance weight must be positive, got %d", c.Weight)
			}
			if c.Severity != "" {
				verr.add(id, "severity", "compliance categories carry no severity")
			}
		default:
			verr.add(id, "kind", "unknown kind %q", c.Kind)
		}

		if strings.TrimSpace(c.Recommendation) == "" {
			verr.add(id, "recommendation", "required")
		}
		if c.DisplayName == "" {
			c.DisplayName = id
		}

		compiled := compileRules(id, c.Rules, verr)

		if _, dup := cat.index[id]; !dup {
			cat.index[id] = len(cat.categories)
		}
		cat.categories = append(cat.categories, c)
		cat.rules = append(cat.rules, compiled)
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}

	sum, err := fingerprint(f.Version, cat.categories)
	if err != nil {
		return nil, fmt.Errorf("fingerprint catalog: %w", err)
	}
	cat.fingerprint = sum

	return cat, nil
}

func compileRules(id string, rules []model.MatchRule, verr *ValidationError) []*regexp.Regexp {
	if len(rules) == 0 {
		verr.add(id, "rules", "empty rule set")
		return nil
	}

	compiled := make([]*regexp.Regexp, 0, len(rules))
	for j, r := range rules {
		field := fmt.Sprintf("rules[%d]", j)
		hasPhrase := strings.TrimSpace(r.Phrase) != ""
		hasPattern := strings.TrimSpace(r.Pattern) != ""

		var expr string
		switch {
		case hasPhrase && hasPattern:
			verr.add(id, field, "set either phrase or pattern, not both")
			continue
		case hasPhrase:
			expr = regexp.QuoteMeta(textnorm.Normalize(r.Phrase))
		case hasPattern:
			expr = r.Pattern
		default:
			verr.add(id, field, "phrase or pattern is required")
			continue
		}

		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			verr.add(id, field, "malformed pattern: %v", err)
			continue
		}
		if re.MatchString("") || matchesZeroWidth(re) {
			verr.add(id, field, "pattern matches empty text")
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// zeroWidthSample catches anchors like \b that never match "" but fire on
// any non-empty document.
const zeroWidthSample = "terms apply. see section 1."

func matchesZeroWidth(re *regexp.Regexp) bool {
	loc := re.FindStringIndex(zeroWidthSample)
	return loc != nil && loc[0] == loc[1]
}

func fingerprint(version string, categories []model.PatternCategory) (string, error) {
	data, err := json.Marshal(catalogFile{Version: version, Categories: categories})
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Version returns the catalog's semantic version
func (c *Catalog) Version() string {
	return c.version
}

// Fingerprint is the sha256 of the catalog's RFC 8785 canonical JSON form,
// stable across processes and platforms
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// Len returns the number of categories
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Category returns the i-th category in declaration order
func (c *Catalog) Category(i int) model.PatternCategory {
	return cloneCategory(c.categories[i])
}

// Rules returns the compiled rules of the i-th category, parallel to its Rules.
// The returned expressions are safe for concurrent use and must not be modified.
func (c *Catalog) Rules(i int) []*regexp.Regexp {
	return c.rules[i]
}

// Categories returns a copy of all categories in declaration order
func (c *Catalog) Categories() []model.PatternCategory {
	out := make([]model.PatternCategory, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cloneCategory(cat)
	}
	return out
}

// Lookup finds a category by id
func (c *Catalog) Lookup(id string) (model.PatternCategory, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.PatternCategory{}, false
	}
	return cloneCategory(c.categories[i]), true
}

// Counts returns the number of risk and compliance categories
func (c *Catalog) Counts() (risks, compliance int) {
	for _, cat := range c.categories {
		if cat.Kind == model.KindRisk {
			risks++
		} else {
			compliance++
		}
	}
	return risks, compliance
}

func cloneCategory(c model.PatternCategory) model.PatternCategory {
	c.Rules = append([]model.MatchRule(nil), c.Rules...)
	return c
}
