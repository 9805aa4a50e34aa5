package directive

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteTable prints the registry as an aligned table.
func WriteTable(w io.Writer, r *Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tUSAGE\tSYNTAX")
	for _, d := range r.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Kind, d.Usage, d.Syntax())
	}
	return tw.Flush()
}
