package render

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText prints m as an aligned two-column table, or its message.
func WriteText(w io.Writer, m DisplayModel) error {
	if m.Kind != KindTable {
		_, err := fmt.Fprintln(w, m.Message)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Metric\tValue")
	for _, metric := range m.Metrics {
		fmt.Fprintf(tw, "%s\t%s\n", metric.Label, metric.Value)
	}
	return tw.Flush()
}
