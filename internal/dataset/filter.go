package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// Filter selects the records of a view. Zero fields do not constrain.
type Filter struct {
	From   string `json:"from,omitempty" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to,omitempty" query:"to" validate:"omitempty,datetime=2006-01-02"`
	Search string `json:"search,omitempty" query:"search" validate:"max=200"`

	// Expr is a boolean expression over the variable keys (iron, silica, ph,
	// density, starch, amina) and date, e.g. "iron > 65 && ph < 10".
	// Missing values are NaN, so any comparison against them is false;
	// missing(x) tests for them explicitly.
	Expr string `json:"where,omitempty" query:"where" validate:"max=500"`
}

// IsZero reports whether f matches every record
func (f Filter) IsZero() bool {
	return f.From == "" && f.To == "" && f.Search == "" && f.Expr == ""
}

// Matcher is a compiled filter
type Matcher struct {
	from    string
	to      string
	search  string
	program *vm.Program
}

// Compile validates f and prepares it for matching
func (f Filter) Compile() (*Matcher, error) {
	m := &Matcher{
		from:   strings.TrimSpace(f.From),
		to:     strings.TrimSpace(f.To),
		search: strings.ToLower(strings.TrimSpace(f.Search)),
	}

	for _, d := range []string{m.from, m.to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(analytics.DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidFilter, d)
		}
	}
	if m.from != "" && m.to != "" && m.from > m.to {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidFilter, m.from, m.to)
	}

	if src := strings.TrimSpace(f.Expr); src != "" {
		program, err := expr.Compile(src,
			expr.Env(exprEnv(analytics.NewRecord(""))),
			expr.AsBool(),
			expr.Function("missing", func(params ...any) (any, error) {
				x, ok := params[0].(float64)
				return ok && math.IsNaN(x), nil
			}, new(func(float64) bool)),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		m.program = program
	}

	return m, nil
}

// Match reports whether r passes every constraint.
// A record whose expression fails to evaluate does not match.
func (m *Matcher) Match(r analytics.Record) bool {
	if m.from != "" && r.Date < m.from {
		return false
	}
	if m.to != "" && r.Date > m.to {
		return false
	}
	if m.search != "" && !matchesSearch(r, m.search) {
		return false
	}
	if m.program != nil {
		out, err := expr.Run(m.program, exprEnv(r))
		if err != nil {
			return false
		}
		if ok, _ := out.(bool); !ok {
			return false
		}
	}
	return true
}

// Apply returns the records of ds matching f, in order
func Apply(ds analytics.Dataset, f Filter) (analytics.Dataset, error) {
	m, err := f.Compile()
	if err != nil {
		return nil, err
	}
	out := make(analytics.Dataset, 0, len(ds))
	for _, r := range ds {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// matchesSearch is a case-insensitive substring test over the date and the
// present values as they are displayed
func matchesSearch(r analytics.Record, term string) bool {
	if strings.Contains(strings.ToLower(r.Date), term) {
		return true
	}
	for _, v := range r.Values {
		if x, ok := v.Get(); ok && strings.Contains(utils.FormatNumber(x), term) {
			return true
		}
	}
	return false
}

func exprEnv(r analytics.Record) map[string]interface{} {
	env := make(map[string]interface{}, analytics.NumVariables+1)
	env["date"] = r.Date
	for _, v := range analytics.AllVariables() {
		env[v.Key()] = r.Values[v].OrNaN()
	}
	return env
}
