// Package analytics provides the shared data model for the flotation
// analytics engines: the closed set of process variables, numeric-or-missing
// values, records and dataset views.
package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Variable identifies one of the fixed numeric process variables.
type Variable int

const (
	IronConcentrate Variable = iota
	SilicaConcentrate
	PulpPH
	PulpDensity
	StarchFlow
	AminaFlow

	// NumVariables is the number of known variables
	NumVariables = 6
)

var variableColumns = [NumVariables]string{
	"% Iron Concentrate",
	"% Silica Concentrate",
	"Ore Pulp pH",
	"Ore Pulp Density",
	"Starch Flow",
	"Amina Flow",
}

var variableKeys = [NumVariables]string{
	"iron",
	"silica",
	"ph",
	"density",
	"starch",
	"amina",
}

// AllVariables returns every variable in dataset column order
func AllVariables() []Variable {
	return []Variable{IronConcentrate, SilicaConcentrate, PulpPH, PulpDensity, StarchFlow, AminaFlow}
}

// Valid reports whether v is one of the known variables
func (v Variable) Valid() bool {
	return v >= 0 && v < NumVariables
}

// Column returns the dataset column name, e.g. "% Iron Concentrate"
func (v Variable) Column() string {
	if !v.Valid() {
		return ""
	}
	return variableColumns[v]
}

// Key returns the short identifier used in query strings and expressions
func (v Variable) Key() string {
	if !v.Valid() {
		return ""
	}
	return variableKeys[v]
}

func (v Variable) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Variable(%d)", int(v))
	}
	return variableColumns[v]
}

// MarshalJSON encodes the variable as its column name
func (v Variable) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid variable %d", int(v))
	}
	return json.Marshal(v.Column())
}

// UnmarshalJSON accepts a column name or a short key
func (v *Variable) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVariable(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariable resolves a column name or short key (case-insensitive)
func ParseVariable(name string) (Variable, error) {
	name = strings.TrimSpace(name)
	for i := 0; i < NumVariables; i++ {
		if strings.EqualFold(name, variableColumns[i]) || strings.EqualFold(name, variableKeys[i]) {
			return Variable(i), nil
		}
	}
	return -1, fmt.Errorf("unknown variable: %q", name)
}

// ParseVariables resolves a list of names; an empty list yields all variables
func ParseVariables(names []string) ([]Variable, error) {
	if len(names) == 0 {
		return AllVariables(), nil
	}
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		v, err := ParseVariable(name)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// Value is a numeric-or-missing quantity. The zero value is missing.
type Value struct {
	Float float64
	Valid bool
}

// Of returns a present value
func Of(x float64) Value {
	return Value{Float: x, Valid: true}
}

// Missing returns an absent value
func Missing() Value {
	return Value{}
}

// Known returns a present value for finite x and a missing value for NaN or ±Inf.
// Engine results pass through Known so a non-computable statistic is explicit.
func Known(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{Float: x, Valid: true}
}

// Get returns the float and whether it is present
func (v Value) Get() (float64, bool) {
	return v.Float, v.Valid
}

// OrNaN returns the float, or NaN when missing
func (v Value) OrNaN() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float
}

// MarshalJSON encodes missing values as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null as missing
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Known(f)
	return nil
}

// Values converts a float slice into known values
func Values(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Known(x)
	}
	return out
}
