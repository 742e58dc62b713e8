// Package sanitize coerces raw stage output into the contracted response
// shape: clamped numbers, non-nil collections, placeholder text for missing
// required fields, padded minimum-length lists and normalized enums.
package sanitize

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Kind is the constraint a Rule enforces.
type Kind int

const (
	KindPercent Kind = iota
	KindProbability
	KindCount
	KindRequiredString
	KindMinItems
	KindEnum
	KindPercentMap
)

func (k Kind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindProbability:
		return "probability"
	case KindCount:
		return "count"
	case KindRequiredString:
		return "requiredString"
	case KindMinItems:
		return "minItems"
	case KindEnum:
		return "enum"
	case KindPercentMap:
		return "percentMap"
	default:
		return "unknown"
	}
}

// Rule is a declarative constraint on one field of T.
type Rule[T any] struct {
	Path     string
	Kind     Kind
	Fallback string
	Min      int
	Allowed  []string

	num  func(*T) *float64
	cnt  func(*T) *int
	str  func(*T) *string
	list func(*T) *[]string
	nums func(*T) *map[string]float64
}

// Percent clamps a field to [0,100].
func Percent[T any](path string, get func(*T) *float64) Rule[T] {
	return Rule[T]{Path: path, Kind: KindPercent, num: get}
}

// Probability clamps a field to [0,1].
func Probability[T any](path string, get func(*T) *float64) Rule[T] {
	return Rule[T]{Path: path, Kind: KindProbability, num: get}
}

// Count floors an integer field at zero.
func Count[T any](path string, get func(*T) *int) Rule[T] {
	return Rule[T]{Path: path, Kind: KindCount, cnt: get}
}

// RequiredString replaces blank text with fallback.
func RequiredString[T any](path string, get func(*T) *string, fallback string) Rule[T] {
	return Rule[T]{Path: path, Kind: KindRequiredString, Fallback: fallback, str: get}
}

// MinItems pads a list with placeholder until it has minLen entries. The
// same placeholder is repeated, so a list two short of minLen gains two
// identical entries.
func MinItems[T any](path string, get func(*T) *[]string, minLen int, placeholder string) Rule[T] {
	return Rule[T]{Path: path, Kind: KindMinItems, Min: minLen, Fallback: placeholder, list: get}
}

// Enum lower-cases a value and replaces anything outside allowed with fallback.
func Enum[T any](path string, get func(*T) *string, allowed []string, fallback string) Rule[T] {
	return Rule[T]{Path: path, Kind: KindEnum, Allowed: allowed, Fallback: fallback, str: get}
}

// PercentMap clamps every value of a map to [0,100] and coerces nil to empty.
func PercentMap[T any](path string, get func(*T) *map[string]float64) Rule[T] {
	return Rule[T]{Path: path, Kind: KindPercentMap, nums: get}
}

// apply enforces the rule on v. prefix locates v inside the response.
func (r Rule[T]) apply(v *T, prefix string, w *warnings) {
	path := r.Path
	if prefix != "" {
		path = prefix + "." + r.Path
	}
	switch r.Kind {
	case KindPercent:
		p := r.num(v)
		*p = ClampPercent(*p)
	case KindProbability:
		p := r.num(v)
		*p = ClampProbability(*p)
	case KindCount:
		p := r.cnt(v)
		if *p < 0 {
			*p = 0
		}
	case KindRequiredString:
		p := r.str(v)
		if strings.TrimSpace(*p) == "" {
			*p = r.Fallback
		}
	case KindMinItems:
		p := r.list(v)
		if *p == nil {
			*p = []string{}
		}
		if n := len(*p); n < r.Min {
			w.add(fmt.Sprintf("%s has %d entries, padded to %d", path, n, r.Min))
			for len(*p) < r.Min {
				*p = append(*p, r.Fallback)
			}
		}
	case KindEnum:
		p := r.str(v)
		norm := strings.ToLower(strings.TrimSpace(*p))
		if slices.Contains(r.Allowed, norm) {
			*p = norm
			return
		}
		w.add(fmt.Sprintf("%s has unrecognized value %q, using %q", path, *p, r.Fallback))
		*p = r.Fallback
	case KindPercentMap:
		p := r.nums(v)
		if *p == nil {
			*p = map[string]float64{}
		}
		for k, val := range *p {
			(*p)[k] = ClampPercent(val)
		}
	}
}

// applyAll runs every rule against v in declaration order.
func applyAll[T any](rules []Rule[T], v *T, prefix string, w *warnings) {
	for _, r := range rules {
		r.apply(v, prefix, w)
	}
}

// ClampPercent bounds v to [0,100]. NaN maps to 0.
func ClampPercent(v float64) float64 {
	return clamp(v, 0, 100)
}

// ClampProbability bounds v to [0,1]. NaN maps to 0.
func ClampProbability(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

type warnings struct {
	msgs []string
}

func (w *warnings) add(msg string) {
	w.msgs = append(w.msgs, msg)
}
