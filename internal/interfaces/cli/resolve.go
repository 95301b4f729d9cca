package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

func newResolveCommand(opts *RootOptions) *cobra.Command {
	var (
		text    string
		file    string
		selfCIK string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve company mentions in text against the company graph",
		Example: `  companygraph resolve --text "We compete with Microsoft Corporation." --self-cik 0000320193
  companygraph resolve --file filing_section.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && file == "" {
				return errors.New(errors.ErrCodeValidation, "either --text or --file is required")
			}
			if text != "" && file != "" {
				return errors.New(errors.ErrCodeValidation, "--text and --file are mutually exclusive")
			}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input file")
				}
				text = string(raw)
			}

			app, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			lookup, err := app.Companies.BuildCompanyLookup(cmd.Context())
			if err != nil {
				return err
			}
			entities, stats, err := app.Resolver.ResolveWithStats(text, lookup, selfCIK)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"entities": entities, "stats": stats})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to resolve")
	cmd.Flags().StringVar(&file, "file", "", "file containing text to resolve")
	cmd.Flags().StringVar(&selfCIK, "self-cik", "", "filer's CIK; its own mentions are dropped")
	return cmd
}
