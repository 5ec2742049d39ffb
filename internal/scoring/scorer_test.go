package scoring

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/khanhnv2901/secheaders/internal/headers"
)

func allDefaultHeaders() headers.HeaderMap {
	return headers.HeaderMap{
		"strict-transport-security": "max-age=31536000; includeSubDomains; preload",
		"content-security-policy":   "default-src 'self'",
		"x-frame-options":           "DENY",
		"x-content-type-options":    "nosniff",
		"referrer-policy":           "strict-origin-when-cross-origin",
		"permissions-policy":        "geolocation=(), microphone=()",
	}
}

func TestScore_AllPresent(t *testing.T) {
	result := Score(allDefaultHeaders(), DefaultCatalog())

	if result.Score != 100 {
		t.Errorf("Expected score 100 with all headers present, got %d", result.Score)
	}
	if result.Tier != TierExcellent {
		t.Errorf("Expected tier Excellent, got %s", result.Tier)
	}
	if len(result.Missing()) != 0 {
		t.Errorf("Expected no missing headers, got %v", result.Missing())
	}
	if result.Present() != DefaultCatalog().Len() {
		t.Errorf("Expected %d present headers, got %d", DefaultCatalog().Len(), result.Present())
	}
}

func TestScore_AllPresentMixedCase(t *testing.T) {
	h := headers.HeaderMap{}
	for k, v := range allDefaultHeaders() {
		h[strings.ToUpper(k)] = v
	}

	result := Score(h, DefaultCatalog())
	if result.Score != 100 || result.Tier != TierExcellent {
		t.Fatalf("Expected 100/Excellent, got %d/%s", result.Score, result.Tier)
	}
}

func TestScore_Empty(t *testing.T) {
	for name, h := range map[string]headers.HeaderMap{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			result := Score(h, DefaultCatalog())
			if result.Score != 0 {
				t.Errorf("Expected score 0, got %d", result.Score)
			}
			if result.Tier != TierCritical {
				t.Errorf("Expected tier Critical, got %s", result.Tier)
			}
			if len(result.Missing()) != 6 {
				t.Errorf("Expected 6 missing headers, got %d", len(result.Missing()))
			}
		})
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	upper := Score(headers.HeaderMap{"Content-Security-Policy": "x"}, DefaultCatalog())
	lower := Score(headers.HeaderMap{"content-security-policy": "x"}, DefaultCatalog())

	if !reflect.DeepEqual(upper, lower) {
		t.Fatalf("Expected identical results, got %+v vs %+v", upper, lower)
	}
	if upper.Score != 25 {
		t.Fatalf("Expected CSP alone to score 25, got %d", upper.Score)
	}
}

func TestScore_Idempotent(t *testing.T) {
	h := headers.HeaderMap{"x-frame-options": "DENY", "referrer-policy": "no-referrer"}
	first := Score(h, DefaultCatalog())
	second := Score(h, DefaultCatalog())

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Expected repeated scoring to be identical")
	}
	if len(h) != 2 {
		t.Fatalf("Score must not mutate its input, got %v", h)
	}
}

func TestScore_CatalogOrderIsStable(t *testing.T) {
	result := Score(headers.HeaderMap{"permissions-policy": "x", "strict-transport-security": "y"}, DefaultCatalog())

	specs := DefaultCatalog().Specs()
	if len(result.Headers) != len(specs) {
		t.Fatalf("Expected %d entries, got %d", len(specs), len(result.Headers))
	}
	for i, entry := range result.Headers {
		if entry.Spec.Key != specs[i].Key {
			t.Fatalf("entry %d: expected %s, got %s", i, specs[i].Key, entry.Spec.Key)
		}
	}
	if !result.Headers[0].Present || result.Headers[0].Value != "y" {
		t.Fatalf("Expected HSTS to be present with its value, got %+v", result.Headers[0])
	}
	if result.Headers[1].Present || result.Headers[1].Value != "" {
		t.Fatalf("Expected CSP to be absent, got %+v", result.Headers[1])
	}
}

func TestScore_Bounds(t *testing.T) {
	catalog := DefaultCatalog()
	keys := []string{}
	for _, spec := range catalog.Specs() {
		keys = append(keys, spec.Key)
	}

	// every subset of the default catalog
	for mask := 0; mask < 1<<len(keys); mask++ {
		h := headers.HeaderMap{}
		for i, k := range keys {
			if mask&(1<<i) != 0 {
				h[k] = "v"
			}
		}
		result := Score(h, catalog)
		if result.Score < 0 || result.Score > 100 {
			t.Fatalf("mask %b: score %d out of range", mask, result.Score)
		}
		if result.Tier != TierFor(result.Score) {
			t.Fatalf("mask %b: tier %s does not match score %d", mask, result.Tier, result.Score)
		}
	}
}

func TestScore_TierBoundaries(t *testing.T) {
	tests := []struct {
		weight int
		want   Tier
	}{
		{weight: 90, want: TierExcellent},
		{weight: 89, want: TierGood},
		{weight: 70, want: TierGood},
		{weight: 69, want: TierModerate},
		{weight: 50, want: TierModerate},
		{weight: 49, want: TierPoor},
		{weight: 30, want: TierPoor},
		{weight: 29, want: TierCritical},
	}

	for _, tt := range tests {
		catalog := MustCatalog(
			SecurityHeaderSpec{Key: "x-scored", Weight: tt.weight},
			SecurityHeaderSpec{Key: "x-missing", Weight: 100 - tt.weight},
		)
		result := Score(headers.HeaderMap{"x-scored": "1"}, catalog)
		if result.Score != tt.weight {
			t.Fatalf("weight %d: expected score %d, got %d", tt.weight, tt.weight, result.Score)
		}
		if result.Tier != tt.want {
			t.Errorf("score %d: expected %s, got %s", tt.weight, tt.want, result.Tier)
		}
	}
}

func TestScore_RoundsHalfUp(t *testing.T) {
	catalog := MustCatalog(
		SecurityHeaderSpec{Key: "a", Weight: 1},
		SecurityHeaderSpec{Key: "b", Weight: 2},
		SecurityHeaderSpec{Key: "c", Weight: 5},
	)

	tests := []struct {
		present []string
		want    int
	}{
		{present: []string{"a"}, want: 13},      // 12.5
		{present: []string{"a", "b"}, want: 38}, // 37.5
		{present: []string{"b"}, want: 25},
		{present: []string{"c"}, want: 63}, // 62.5
		{present: []string{"a", "c"}, want: 75},
		{present: []string{"b", "c"}, want: 88}, // 87.5
	}

	for _, tt := range tests {
		h := headers.HeaderMap{}
		for _, k := range tt.present {
			h[k] = "1"
		}
		if got := Score(h, catalog).Score; got != tt.want {
			t.Errorf("present %v: expected %d, got %d", tt.present, tt.want, got)
		}
	}
}

func TestScore_TruncationKeepsFullValue(t *testing.T) {
	long := strings.Repeat("a", 100)
	result := Score(headers.HeaderMap{"content-security-policy": long}, DefaultCatalog())

	csp := result.Headers[1]
	if csp.Value != long {
		t.Fatalf("Expected full value to be kept, got %d chars", len(csp.Value))
	}
	display := csp.DisplayValue(60)
	if display != strings.Repeat("a", 60)+"..." {
		t.Fatalf("unexpected display value %q", display)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "DENY", limit: 60, want: "DENY"},
		{name: "exact", in: strings.Repeat("x", 60), limit: 60, want: strings.Repeat("x", 60)},
		{name: "long", in: strings.Repeat("x", 61), limit: 60, want: strings.Repeat("x", 60) + "..."},
		{name: "default limit", in: strings.Repeat("y", 70), limit: 0, want: strings.Repeat("y", 60) + "..."},
		{name: "multibyte", in: "ééééé", limit: 3, want: "ééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Fatalf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalysisResultJSON(t *testing.T) {
	result := Score(headers.HeaderMap{"x-frame-options": "DENY"}, DefaultCatalog())
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"tier":"Critical"`) {
		t.Fatalf("expected tier to be encoded by name, got %s", data)
	}
	if !strings.Contains(string(data), `"score":15`) {
		t.Fatalf("expected score 15, got %s", data)
	}
}
