package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/extraction"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

func newExtractCommand(opts *RootOptions) *cobra.Command {
	var (
		selfCIK      string
		businessFile string
		riskFile     string
		relTypes     []string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract relationship edges from filing sections and write them to the graph",
		Example: `  companygraph extract --self-cik 0000320193 \
    --business-file item1.txt --risk-file item1a.txt --types HAS_SUPPLIER,HAS_CUSTOMER`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if selfCIK == "" {
				return errors.New(errors.ErrCodeValidation, "--self-cik is required")
			}
			if businessFile == "" && riskFile == "" {
				return errors.New(errors.ErrCodeValidation, "at least one of --business-file or --risk-file is required")
			}

			doc := extraction.Document{SelfCIK: selfCIK, RelationshipTypes: relTypes}
			if businessFile != "" {
				raw, err := os.ReadFile(businessFile)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read business section")
				}
				doc.BusinessDescription = string(raw)
			}
			if riskFile != "" {
				raw, err := os.ReadFile(riskFile)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read risk section")
				}
				doc.RiskFactors = string(raw)
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
			report, err := app.Extraction.ProcessDocument(cmd.Context(), doc, lookup)
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().StringVar(&selfCIK, "self-cik", "", "filer's CIK")
	cmd.Flags().StringVar(&businessFile, "business-file", "", "file with the business description section")
	cmd.Flags().StringVar(&riskFile, "risk-file", "", "file with the risk factors section")
	cmd.Flags().StringSliceVar(&relTypes, "types", nil, "relationship types to extract (default: all)")
	return cmd
}
