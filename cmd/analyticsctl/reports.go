package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goliatone/go-analytics-console/components/dashboard"
	"github.com/goliatone/go-analytics-console/components/dashboard/queries"
)

type reportsCmd struct {
	List   reportsListCmd   `cmd:"" help:"List every report."`
	Get    reportsGetCmd    `cmd:"" help:"Show one report."`
	Create reportsCreateCmd `cmd:"" help:"Create a report."`
	Update reportsUpdateCmd `cmd:"" help:"Replace the scope and metrics of a report."`
	Delete reportsDeleteCmd `cmd:"" help:"Delete a report."`
}

type reportFields struct {
	Scope   string `required:"" help:"Report scope."`
	Metrics string `required:"" help:"Report metrics description."`
}

func (f reportFields) input() (dashboard.ReportInput, error) {
	input := dashboard.ReportInput{Scope: f.Scope, Metrics: f.Metrics}
	if err := dashboard.NewJSONSchemaValidator().Validate(input); err != nil {
		return dashboard.ReportInput{}, err
	}
	return input, nil
}

type reportsListCmd struct{}

func (cmd *reportsListCmd) Run(rt *runtime) error {
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	reports, err := client.ListReports(rt.ctx)
	if err != nil {
		return err
	}
	writeReports(rt.out, reports)
	return nil
}

type reportsGetCmd struct {
	ID int64 `arg:"" help:"Report id."`
}

func (cmd *reportsGetCmd) Run(rt *runtime) error {
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	report, err := queries.NewRemoteReportQuery(client).Query(rt.ctx, cmd.ID)
	if err != nil {
		return err
	}
	writeReports(rt.out, []dashboard.Report{report})
	return nil
}

type reportsCreateCmd struct {
	reportFields
}

func (cmd *reportsCreateCmd) Run(rt *runtime) error {
	input, err := cmd.input()
	if err != nil {
		return err
	}
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	created, err := client.CreateReport(rt.ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✓ Report %d created\n", created.IDValue())
	return nil
}

type reportsUpdateCmd struct {
	ID int64 `arg:"" help:"Report id."`
	reportFields
}

func (cmd *reportsUpdateCmd) Run(rt *runtime) error {
	input, err := cmd.input()
	if err != nil {
		return err
	}
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	if _, err := client.UpdateReport(rt.ctx, cmd.ID, input); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✓ Report %d updated\n", cmd.ID)
	return nil
}

type reportsDeleteCmd struct {
	ID  int64 `arg:"" help:"Report id."`
	Yes bool  `short:"y" help:"Confirm the deletion."`
}

func (cmd *reportsDeleteCmd) Run(rt *runtime) error {
	if !cmd.Yes {
		fmt.Fprintf(rt.out, "Report %d not deleted (pass --yes to confirm)\n", cmd.ID)
		return nil
	}
	client, _, err := rt.backend()
	if err != nil {
		return err
	}
	if err := client.DeleteReport(rt.ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "✓ Report %d deleted\n", cmd.ID)
	return nil
}

func writeReports(out io.Writer, reports []dashboard.Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCOPE\tMETRICS\tGENERATED")
	for _, r := range reports {
		id := "-"
		if r.HasID() {
			id = fmt.Sprint(r.IDValue())
		}
		generated := r.GeneratedDate
		if generated == "" {
			generated = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, r.Scope, r.Metrics, generated)
	}
	_ = tw.Flush()
}
