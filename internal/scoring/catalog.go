package scoring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
	"gopkg.in/yaml.v3"
)

// SecurityHeaderSpec describes one scored security header.
type SecurityHeaderSpec struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`
	Weight      int    `json:"weight" yaml:"weight"`
}

// Catalog is an immutable, ordered list of header specs. The order is the
// display order of every analysis.
type Catalog struct {
	specs    []SecurityHeaderSpec
	maxScore int
}

// ConfigError reports a catalog that violates its invariants.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid header catalog (%s): %v", e.Key, e.Err)
	}
	return fmt.Sprintf("invalid header catalog: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewCatalog validates specs and returns a catalog holding a private copy.
// Keys are lower-cased; duplicates are detected case-insensitively.
func NewCatalog(specs ...SecurityHeaderSpec) (Catalog, error) {
	if len(specs) == 0 {
		return Catalog{}, &ConfigError{Err: serrors.ErrEmptyCatalog}
	}

	seen := make(map[string]struct{}, len(specs))
	out := make([]SecurityHeaderSpec, 0, len(specs))
	total := 0
	for _, spec := range specs {
		spec.Key = strings.ToLower(strings.TrimSpace(spec.Key))
		if spec.Key == "" {
			return Catalog{}, &ConfigError{Err: serrors.ErrEmptyHeaderKey}
		}
		if spec.Weight <= 0 {
			return Catalog{}, &ConfigError{Key: spec.Key, Err: serrors.ErrInvalidWeight}
		}
		if _, dup := seen[spec.Key]; dup {
			return Catalog{}, &ConfigError{Key: spec.Key, Err: serrors.ErrDuplicateHeader}
		}
		seen[spec.Key] = struct{}{}
		if spec.DisplayName == "" {
			spec.DisplayName = spec.Key
		}
		total += spec.Weight
		out = append(out, spec)
	}

	if total <= 0 {
		return Catalog{}, &ConfigError{Err: serrors.ErrZeroTotalWeight}
	}

	return Catalog{specs: out, maxScore: total}, nil
}

// MustCatalog is like NewCatalog but panics on error. Use it for static
// catalogs built at process start.
func MustCatalog(specs ...SecurityHeaderSpec) Catalog {
	c, err := NewCatalog(specs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Specs returns a copy of the catalog entries in display order.
func (c Catalog) Specs() []SecurityHeaderSpec {
	out := make([]SecurityHeaderSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.specs) }

// MaxScore returns the sum of all weights.
func (c Catalog) MaxScore() int { return c.maxScore }

// Lookup returns the spec for key, matched case-insensitively.
func (c Catalog) Lookup(key string) (SecurityHeaderSpec, bool) {
	key = strings.ToLower(key)
	for _, spec := range c.specs {
		if spec.Key == key {
			return spec, true
		}
	}
	return SecurityHeaderSpec{}, false
}

// defaultSpecs are the product defaults. Weights sum to 100.
var defaultSpecs = []SecurityHeaderSpec{
	{
		Key:         "strict-transport-security",
		DisplayName: "HTTP Strict Transport Security (HSTS)",
		Description: "Forces browsers to use HTTPS connections only",
		Weight:      20,
	},
	{
		Key:         "content-security-policy",
		DisplayName: "Content Security Policy (CSP)",
		Description: "Prevents XSS attacks by controlling resource loading",
		Weight:      25,
	},
	{
		Key:         "x-frame-options",
		DisplayName: "X-Frame-Options",
		Description: "Prevents clickjacking by controlling iframe embedding",
		Weight:      15,
	},
	{
		Key:         "x-content-type-options",
		DisplayName: "X-Content-Type-Options",
		Description: "Prevents MIME-sniffing attacks",
		Weight:      15,
	},
	{
		Key:         "referrer-policy",
		DisplayName: "Referrer-Policy",
		Description: "Controls how much referrer information is shared",
		Weight:      10,
	},
	{
		Key:         "permissions-policy",
		DisplayName: "Permissions-Policy",
		Description: "Controls browser features and APIs available",
		Weight:      15,
	},
}

var defaultCatalog = MustCatalog(defaultSpecs...)

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return defaultCatalog
}

type catalogFile struct {
	Headers []SecurityHeaderSpec `yaml:"headers"`
}

// LoadCatalog decodes a YAML catalog of the form
//
//	headers:
//	  - key: content-security-policy
//	    display_name: Content Security Policy (CSP)
//	    description: ...
//	    weight: 25
//
// and validates it with NewCatalog.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return Catalog{}, &ConfigError{Err: serrors.ErrEmptyCatalog}
		}
		return Catalog{}, &ConfigError{Err: fmt.Errorf("%w: %v", serrors.ErrCatalogUnreadable, err)}
	}
	return NewCatalog(file.Headers...)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, &ConfigError{Err: fmt.Errorf("%w: %v", serrors.ErrCatalogUnreadable, err)}
	}
	defer f.Close()
	return LoadCatalog(f)
}

// MarshalYAML renders the catalog in the format LoadCatalog accepts.
func (c Catalog) MarshalYAML() (interface{}, error) {
	return catalogFile{Headers: c.Specs()}, nil
}

// MarshalJSON renders the catalog with its maximum score.
func (c Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MaxScore int                  `json:"max_score"`
		Headers  []SecurityHeaderSpec `json:"headers"`
	}{
		MaxScore: c.maxScore,
		Headers:  c.Specs(),
	})
}
