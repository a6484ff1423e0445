// Package sink provides consumers for rows produced by a sas7bdat.Reader.
//
// Row sinks (Null, Print, CSV, Rows) receive one row at a time, chunk sinks
// (Parquet, SQLite, Chunks) receive batches, and Columns receives the whole
// table column by column once the file is exhausted.
package sink

import (
	"strconv"
	"strings"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

var (
	_ sas7bdat.RowSink   = (*Null)(nil)
	_ sas7bdat.RowSink   = (*Print)(nil)
	_ sas7bdat.RowSink   = (*CSV)(nil)
	_ sas7bdat.RowSink   = (*Rows)(nil)
	_ sas7bdat.ChunkSink = (*Chunks)(nil)
	_ sas7bdat.ChunkSink = (*Parquet)(nil)
	_ sas7bdat.ChunkSink = (*SQLite)(nil)
	_ sas7bdat.DataSink  = (*Columns)(nil)
)

// uniqueNames returns the column names made unique by suffixing repeats
// with "_2", "_3" and so on. Empty names become "col<index>".
func uniqueNames(cols []sas7bdat.Column) []string {
	names := make([]string, len(cols))
	seen := make(map[string]int, len(cols))
	for i, c := range cols {
		name := c.Name
		if name == "" {
			name = "col" + strconv.Itoa(c.Index)
		}
		key := strings.ToLower(name)
		if n := seen[key]; n > 0 {
			for {
				n++
				candidate := name + "_" + strconv.Itoa(n)
				if seen[strings.ToLower(candidate)] == 0 {
					seen[key] = n
					name = candidate
					key = strings.ToLower(candidate)
					break
				}
			}
		}
		seen[key]++
		names[i] = name
	}
	return names
}
