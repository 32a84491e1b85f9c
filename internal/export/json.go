package export

import (
	"encoding/json"
	"io"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// WriteJSON writes ds as an indented array of record objects keyed by
// "date" and the column names of variables (all when nil). Missing values
// are null.
func WriteJSON(w io.Writer, ds analytics.Dataset, variables []analytics.Variable) error {
	variables = orAll(variables)

	rows := make([]map[string]interface{}, 0, len(ds))
	for _, r := range ds {
		row := make(map[string]interface{}, len(variables)+1)
		row["date"] = r.Date
		for _, v := range variables {
			row[v.Column()] = r.Values[v]
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
