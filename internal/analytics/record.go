package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the day-granularity layout of Record.Date
const DateLayout = "2006-01-02"

// Record is one measurement event
type Record struct {
	Date   string
	Values [NumVariables]Value
}

// NewRecord creates a record with every variable missing
func NewRecord(date string) Record {
	return Record{Date: date}
}

// Get returns the value of v and whether it is present
func (r Record) Get(v Variable) (float64, bool) {
	if !v.Valid() {
		return 0, false
	}
	return r.Values[v].Get()
}

// With returns a copy of r with v set to x; NaN or ±Inf leaves v missing
func (r Record) With(v Variable, x float64) Record {
	if v.Valid() {
		r.Values[v] = Known(x)
	}
	return r
}

// Time parses the record date
func (r Record) Time() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

// MarshalJSON encodes the record keyed by dataset column names
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, NumVariables+1)
	m["date"] = r.Date
	for _, v := range AllVariables() {
		m[v.Column()] = r.Values[v]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a record keyed by column names or short keys.
// Unknown keys are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var rec Record
	for key, msg := range raw {
		if key == "date" {
			if err := json.Unmarshal(msg, &rec.Date); err != nil {
				return fmt.Errorf("date: %w", err)
			}
			continue
		}
		v, err := ParseVariable(key)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(msg, &rec.Values[v]); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	*r = rec
	return nil
}

// Dataset is an ordered view of records, not necessarily sorted by date.
// Engines only read it.
type Dataset []Record

// Column extracts the non-missing values of v in record order
func (ds Dataset) Column(v Variable) []float64 {
	values := make([]float64, 0, len(ds))
	for _, r := range ds {
		if x, ok := r.Get(v); ok {
			values = append(values, x)
		}
	}
	return values
}

// Dates returns the distinct record dates in ascending order
func (ds Dataset) Dates() []string {
	seen := make(map[string]struct{}, len(ds))
	dates := make([]string, 0)
	for _, r := range ds {
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the number of records
func (ds Dataset) Len() int {
	return len(ds)
}

// Clone returns a copy that shares no backing array with ds
func (ds Dataset) Clone() Dataset {
	out := make(Dataset, len(ds))
	copy(out, ds)
	return out
}
