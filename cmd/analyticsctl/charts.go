package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/goliatone/go-analytics-console/components/dashboard"
)

type chartsCmd struct {
	List chartsListCmd `cmd:"" help:"List the chart sources the backend serves."`
	Show chartsShowCmd `cmd:"" help:"Fetch a chart dataset and print it as a table."`
}

type chartsListCmd struct{}

func (cmd *chartsListCmd) Run(rt *runtime) error {
	for _, source := range dashboard.ChartSources() {
		fmt.Fprintln(rt.out, source)
	}
	return nil
}

type chartsShowCmd struct {
	Source string `arg:"" help:"Chart source path, e.g. participation/status."`
}

func (cmd *chartsShowCmd) Run(rt *runtime) error {
	source, err := dashboard.ParseChartSource(cmd.Source)
	if err != nil {
		return err
	}
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	dataset, err := client.FetchChart(rt.ctx, source)
	if err != nil {
		return err
	}
	writeDataset(rt.out, dataset)
	return nil
}

func writeDataset(out io.Writer, dataset dashboard.ChartDataset) {
	fmt.Fprintln(out, dataset.Label)
	if dataset.Empty() {
		fmt.Fprintln(out, "(no data)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range dataset.Points {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	_ = tw.Flush()
}
