package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BuildFunc builds a Validator from declarative options, as found
// in suite files.
type BuildFunc func(opts map[string]any) (Validator, error)

// Registry maps validator kinds to builders. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuildFunc
}

// NewRegistry creates a Registry with the built-in kinds
// ("content_type", "dimension", "aspect_ratio") pre-registered.
func NewRegistry() *Registry {
	r := &Registry{
		builders: make(map[string]BuildFunc),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.builders["content_type"] = buildContentType
	r.builders["dimension"] = buildDimension
	r.builders["aspect_ratio"] = buildAspectRatio
}

// Register adds a builder for kind. Returns an error if the kind is
// already registered.
func (r *Registry) Register(kind string, build BuildFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("validator kind already registered: %s", kind)
	}
	r.builders[kind] = build
	return nil
}

// Has returns true if kind has a registered builder.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.builders[kind]
	return exists
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs a validator of kind from opts.
func (r *Registry) Build(kind string, opts map[string]any) (Validator, error) {
	r.mu.RLock()
	build, exists := r.builders[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown validator kind: %s", kind)
	}
	v, err := build(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return v, nil
}

func buildContentType(opts map[string]any) (Validator, error) {
	allowed, ok := toStrings(opts["allowed"])
	if !ok || len(allowed) == 0 {
		return nil, fmt.Errorf("option allowed must list content types")
	}
	return ContentType{Allowed: allowed}, nil
}

func buildDimension(opts map[string]any) (Validator, error) {
	var v Dimension
	for key, target := range map[string]**int{
		"width_min":  &v.WidthMin,
		"width_max":  &v.WidthMax,
		"height_min": &v.HeightMin,
		"height_max": &v.HeightMax,
	} {
		if err := setBound(opts, key, target); err != nil {
			return nil, err
		}
	}
	for dim, targets := range map[string][2]**int{
		"width":  {&v.WidthMin, &v.WidthMax},
		"height": {&v.HeightMin, &v.HeightMax},
	} {
		raw, present := opts[dim]
		if !present {
			continue
		}
		n, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("option %s is not a number", dim)
		}
		lo, hi := n, n
		*targets[0], *targets[1] = &lo, &hi
	}
	if v.WidthMin == nil && v.WidthMax == nil &&
		v.HeightMin == nil && v.HeightMax == nil {
		return nil, fmt.Errorf("no width or height bound given")
	}
	return v, nil
}

func buildAspectRatio(opts map[string]any) (Validator, error) {
	ratio, ok := opts["ratio"].(string)
	if !ok || strings.TrimSpace(ratio) == "" {
		return nil, fmt.Errorf("option ratio must be a string")
	}
	return AspectRatio{Ratio: ratio}, nil
}

func setBound(opts map[string]any, key string, target **int) error {
	raw, present := opts[key]
	if !present {
		return nil
	}
	n, ok := toInt(raw)
	if !ok {
		return fmt.Errorf("option %s is not a number", key)
	}
	*target = &n
	return nil
}

// toInt converts an any value to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// toStrings converts a string, []string or []any of strings.
func toStrings(v any) ([]string, bool) {
	switch val := v.(type) {
	case string:
		return []string{val}, true
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
