package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wastelog/internal/attachments"
	"wastelog/internal/render"
	"wastelog/internal/services"
)

type addParams struct {
	form  services.EntryForm
	files []string
}

func newAddCmd(r *root) *cobra.Command {
	var p addParams
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a waste entry",
		Example: `  wastelog add --type paper --weight 1.2 --method recycling
  wastelog add --type electronic --weight 0,8 --method "drop-off" --date 2024-05-02 --file receipt.pdf`,
		Args: cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			return runAdd(cmd, app, p)
		}),
	}

	cmd.Flags().StringVarP(&p.form.WasteType, "type", "t", "", "waste type (plastic, paper, glass, metal, organic, electronic, other)")
	cmd.Flags().StringVarP(&p.form.Weight, "weight", "w", "", "weight in kg, '.' or ',' as decimal separator")
	cmd.Flags().StringVarP(&p.form.DisposalMethod, "method", "m", "", "disposal method, e.g. recycling or landfill")
	cmd.Flags().StringVarP(&p.form.Date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVarP(&p.files, "file", "f", nil, "attach a file (repeatable)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func runAdd(cmd *cobra.Command, app *App, p addParams) error {
	var candidates []attachments.Candidate
	for _, path := range p.files {
		c, err := attachments.FromPath(path)
		if err != nil {
			cmd.PrintErrf("Skipped %s: %v\n", path, err)
			continue
		}
		candidates = append(candidates, c)
	}

	res, err := app.Service.CreateEntry(cmd.Context(), p.form, candidates)
	if err != nil {
		return err
	}

	e := res.Entry
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %s of %s (%s) on %s\n", render.Kg(e.WeightKg), e.Type, e.DisposalMethod, e.Date)
	fmt.Fprintf(out, "ID: %s\n", e.ID)
	for _, a := range e.Attachments {
		fmt.Fprintf(out, "Attached: %s (%s)\n", a.Name, attachments.FormatFileSize(a.SizeBytes))
	}
	for _, rej := range res.Rejections {
		cmd.PrintErrf("Skipped %s: %s\n", rej.Name, rej.Reason)
	}
	return nil
}
