package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// CategoryMarker embeds a categorical variable's parent name and category
// value into a single encoded state/action name. Encode is the only producer
// of this convention; the renderer and condition logic are its consumers.
const CategoryMarker = "_is_category_"

// Variable describes one input (state) or output (action) of a domain.
// Size > 1 means the variable is categorical/one-hot and Values must supply
// one label per category.
type Variable struct {
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Values []string `json:"values,omitempty"`
}

// Encode expands an ordered variable list into an enumerated index → name
// map. A categorical variable of size N produces N consecutive entries named
// "<name>_is_category_<value>"; a scalar produces a single entry. Keys are
// stringified indices assigned contiguously from 0, in input order.
func Encode(vars []Variable) (map[string]string, error) {
	encoded := make(map[string]string)
	index := 0
	for _, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("encode schema: variable %d has empty name", index)
		}
		if v.Size < 1 {
			return nil, fmt.Errorf("encode schema: variable %q has size %d, want >= 1", v.Name, v.Size)
		}
		if v.Size > 1 {
			if len(v.Values) < v.Size {
				return nil, fmt.Errorf("encode schema: categorical variable %q has %d values, want %d",
					v.Name, len(v.Values), v.Size)
			}
			for i := 0; i < v.Size; i++ {
				encoded[strconv.Itoa(index)] = v.Name + CategoryMarker + v.Values[i]
				index++
			}
			continue
		}
		encoded[strconv.Itoa(index)] = v.Name
		index++
	}
	return encoded, nil
}

// IsCategorical reports whether an encoded name carries a category marker.
func IsCategorical(name string) bool {
	return strings.Contains(name, CategoryMarker)
}

// ExtractName returns the parent variable name of an encoded categorical
// name. For non-categorical names it returns the name unchanged.
func ExtractName(name string) string {
	base, _, _ := strings.Cut(name, CategoryMarker)
	return base
}

// ExtractCategory returns the category value of an encoded categorical name.
// The second return is false when the marker is absent; callers should check
// IsCategorical first.
func ExtractCategory(name string) (string, bool) {
	_, category, found := strings.Cut(name, CategoryMarker)
	return category, found
}
