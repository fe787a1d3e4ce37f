// SPDX-License-Identifier: MIT
package effect

import (
	"fmt"

	"beatviz/pkg/vmath"
)

// Kind identifies the control surface for a parameter.
type Kind string

const (
	KindSlider  Kind = "slider"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindColor   Kind = "color"
)

// Parameter describes one tunable knob an effect exposes. The descriptor
// is static metadata; live values are kept in a Values store so that two
// instances of the same effect never share state.
type Parameter struct {
	Key     string
	Label   string
	Kind    Kind
	Default any
	Min     float64
	Max     float64
	Step    float64
	Unit    string
	Options []string
}

// Slider builds a numeric parameter with an inclusive range.
func Slider(key, label string, def, min, max, step float64, unit string) Parameter {
	return Parameter{
		Key: key, Label: label, Kind: KindSlider,
		Default: def, Min: min, Max: max, Step: step, Unit: unit,
	}
}

// Boolean builds an on/off parameter.
func Boolean(key, label string, def bool) Parameter {
	return Parameter{Key: key, Label: label, Kind: KindBoolean, Default: def}
}

// Enum builds a parameter constrained to a fixed option list. The default
// must be one of the options.
func Enum(key, label, def string, options ...string) Parameter {
	return Parameter{Key: key, Label: label, Kind: KindEnum, Default: def, Options: options}
}

// Color builds a hex-string color parameter ("#RRGGBB").
func Color(key, label, def string) Parameter {
	return Parameter{Key: key, Label: label, Kind: KindColor, Default: def}
}

// Values holds the live settings for one effect instance, keyed by
// parameter key. Sets are validated against the descriptors: sliders
// clamp to [Min, Max], enums reject unknown options.
type Values struct {
	order  []Parameter
	params map[string]Parameter
	vals   map[string]any
}

// NewValues seeds a store with every parameter at its default.
func NewValues(params []Parameter) *Values {
	v := &Values{
		order:  params,
		params: make(map[string]Parameter, len(params)),
		vals:   make(map[string]any, len(params)),
	}
	for _, p := range params {
		v.params[p.Key] = p
		v.vals[p.Key] = p.Default
	}
	return v
}

// Descriptors returns the parameter descriptors in declaration order.
func (v *Values) Descriptors() []Parameter {
	return v.order
}

// Set validates and stores a value. Unknown keys and type mismatches
// are errors; out-of-range slider values clamp rather than fail.
func (v *Values) Set(key string, val any) error {
	p, ok := v.params[key]
	if !ok {
		return fmt.Errorf("effect: unknown parameter %q", key)
	}
	switch p.Kind {
	case KindSlider:
		f, ok := toFloat(val)
		if !ok {
			return fmt.Errorf("effect: parameter %q wants a number, got %T", key, val)
		}
		v.vals[key] = vmath.Clamp(f, p.Min, p.Max)
	case KindBoolean:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("effect: parameter %q wants a bool, got %T", key, val)
		}
		v.vals[key] = b
	case KindEnum:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("effect: parameter %q wants a string, got %T", key, val)
		}
		if !contains(p.Options, s) {
			return fmt.Errorf("effect: parameter %q has no option %q", key, s)
		}
		v.vals[key] = s
	case KindColor:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("effect: parameter %q wants a string, got %T", key, val)
		}
		v.vals[key] = s
	default:
		return fmt.Errorf("effect: parameter %q has unknown kind %q", key, p.Kind)
	}
	return nil
}

// Float returns the numeric value for key, or the zero value when the
// key is unknown or non-numeric.
func (v *Values) Float(key string) float64 {
	f, _ := toFloat(v.vals[key])
	return f
}

// Bool returns the boolean value for key.
func (v *Values) Bool(key string) bool {
	b, _ := v.vals[key].(bool)
	return b
}

// String returns the string value for key (enum and color kinds).
func (v *Values) String(key string) string {
	s, _ := v.vals[key].(string)
	return s
}

// Reset restores every parameter to its descriptor default.
func (v *Values) Reset() {
	for key, p := range v.params {
		v.vals[key] = p.Default
	}
}

func toFloat(val any) (float64, bool) {
	switch x := val.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}
