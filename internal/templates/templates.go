// Package templates holds the static workout template catalog. The catalog
// is compiled into the binary and read-only; routines reference entries by
// key and materialize them into workouts at start time.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed catalog.json
var embeddedCatalog embed.FS

// TemplateExercise is one exercise entry within a template.
type TemplateExercise struct {
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	BaseReps   int     `json:"baseReps"`
	BaseWeight float64 `json:"baseWeight"` // kg; 0 for bodyweight movements
}

// Template is a reusable workout blueprint.
type Template struct {
	Name         string             `json:"name"`
	Phase        string             `json:"phase"` // e.g. "strength", "hypertrophy", "conditioning"
	BaseDuration int                `json:"baseDuration"`
	Difficulty   string             `json:"difficulty,omitempty"`
	Exercises    []TemplateExercise `json:"exercises"`
}

var catalog map[string]Template

func init() {
	data, err := embeddedCatalog.ReadFile("catalog.json")
	if err != nil {
		panic(fmt.Sprintf("templates: failed to read embedded catalog: %v", err))
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		panic(fmt.Sprintf("templates: failed to parse embedded catalog: %v", err))
	}
}

// Get returns the template for the given key, or false if the key is unknown.
func Get(key string) (Template, bool) {
	t, ok := catalog[key]
	return t, ok
}

// All returns a copy of the full catalog keyed by template key.
func All() map[string]Template {
	out := make(map[string]Template, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}

// Keys returns all template keys in sorted order, for stable seeding.
func Keys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
