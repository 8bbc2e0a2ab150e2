package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Table renders data as a formatted table.
type Table struct {
	headers []string
	rows    [][]string
	writer  io.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		writer:  os.Stdout,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

// Render writes the table.
func (t *Table) Render() {
	w := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(t.headers, "\t"))

	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(sep, "\t"))

	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
}

// printOutput prints data in the requested format.
func printOutput(data interface{}) error {
	switch getOutputFormat() {
	case "yaml":
		return printYAML(os.Stdout, data)
	default:
		// Table callers render themselves; anything else falls back to JSON
		return printJSON(os.Stdout, data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// formatStatus returns a status string with visual indicator.
func formatStatus(status string) string {
	switch strings.ToLower(status) {
	case "published":
		return "[+] " + status
	case "draft":
		return "[~] " + status
	default:
		return status
	}
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// errReported marks errors that were already shown to the user as a notice
var errReported = errors.New("reported")

func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errReported, err)
}

// notifier prints collection notices. Danger goes to stderr.
type notifier struct {
	out     io.Writer
	err     io.Writer
	dangers int
}

func newNotifier() *notifier {
	return &notifier{out: os.Stdout, err: os.Stderr}
}

func (n *notifier) Danger(msg string) {
	n.dangers++
	fmt.Fprintf(n.err, "[!] %s\n", msg)
}

func (n *notifier) Success(msg string) {
	fmt.Fprintf(n.out, "[+] %s\n", msg)
}

// check marks err as reported when a danger notice was shown
func (n *notifier) check(err error) error {
	if err != nil && n.dangers > 0 {
		return reported(err)
	}
	return err
}
