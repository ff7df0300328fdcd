package lang

import "fmt"

// Pivot turns narrow rows into wide rows.
//
// Rows sharing the same value under key are merged into one output row. For
// each input row the value under column names a new field, which is set to
// the value under value. Output rows keep the order in which their keys first
// appear.
//
//	rows := []map[string]any{
//	    {"day": "mon", "metric": "cpu", "v": 0.4},
//	    {"day": "mon", "metric": "mem", "v": 0.7},
//	}
//	Pivot(rows, "day", "metric", "v")
//	// [{"day": "mon", "cpu": 0.4, "mem": 0.7}]
func Pivot(rows []map[string]any, key, column, value string) []map[string]any {
	var out []map[string]any
	index := make(map[string]int)

	for _, row := range rows {
		k, ok := row[key]
		if !ok {
			continue
		}
		id := fmt.Sprint(k)

		i, seen := index[id]
		if !seen {
			i = len(out)
			index[id] = i
			out = append(out, map[string]any{key: k})
		}

		col, ok := row[column]
		if !ok {
			continue
		}
		out[i][fmt.Sprint(col)] = row[value]
	}
	return out
}
