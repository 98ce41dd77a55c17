package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lomoval/eventstore/internal/event"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput prints events in the given format. An empty collection is an empty JSON array.
func WriteOutput(w io.Writer, events []event.Event, format OutputFormat) error {
	if format == FormatJSON {
		if events == nil {
			events = []event.Event{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}
	return writeText(w, events)
}

func writeText(w io.Writer, events []event.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tHOST\tLOCATION\tDESCRIPTION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Name, e.Host, e.Location, e.Description)
	}
	return tw.Flush()
}
