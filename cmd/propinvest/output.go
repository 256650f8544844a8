package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json.Encode: %w", err)
	}

	return nil
}

func warnf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.ErrWriter, "warning: "+format+"\n", args...)
}

type table struct {
	w *tabwriter.Writer
}

func newTable(c *cli.Context) table {
	return table{w: tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)} //nolint:mnd
}

func (t table) row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t table) blank() {
	fmt.Fprintln(t.w)
}

func (t table) flush() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("tabwriter.Flush: %w", err)
	}

	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
