package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// writeRecords prints records in the selected output format.
func writeRecords(w io.Writer, records []record) error {
	switch outputFormat {
	case "json":
		rows := make([]map[string]string, len(records))
		for i, r := range records {
			rows[i] = r.asMap()
		}
		return outputJSON(w, rows)

	case "table":
		if len(records) == 0 {
			fmt.Fprintln(w, "No records found")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		headers := make([]string, len(records[0]))
		for i, f := range records[0] {
			headers[i] = strings.ToUpper(f.Name)
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, r := range records {
			values := make([]string, len(r))
			for i, f := range r {
				values[i] = f.Value
			}
			fmt.Fprintln(tw, strings.Join(values, "\t"))
		}
		return tw.Flush()

	default:
		if len(records) == 0 {
			fmt.Fprintln(w, "No records found")
			return nil
		}
		for _, r := range records {
			fmt.Fprintln(w, r.String())
		}
		return nil
	}
}

// writeRecord prints a single record.
func writeRecord(w io.Writer, r record) error {
	if outputFormat == "json" {
		return outputJSON(w, r.asMap())
	}
	return writeRecords(w, []record{r})
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r record) asMap() map[string]string {
	m := make(map[string]string, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// String renders the record as space-separated name=value pairs.
// Values containing spaces are quoted.
func (r record) String() string {
	parts := make([]string, len(r))
	for i, f := range r {
		v := f.Value
		if strings.ContainsAny(v, " \t\n\"") {
			v = fmt.Sprintf("%q", v)
		}
		parts[i] = f.Name + "=" + v
	}
	return strings.Join(parts, " ")
}
