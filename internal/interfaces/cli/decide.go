package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

func newDecideCommand(opts *RootOptions) *cobra.Command {
	var (
		mention    string
		sentence   string
		relType    string
		company    string
		similarity float64
	)

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Run one relationship mention through the tiered decision system",
		Example: `  companygraph decide --mention "Microsoft" --type HAS_SUPPLIER \
    --sentence "Microsoft supplies our cloud infrastructure." --similarity 0.52`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("similarity") && (similarity < 0 || similarity > 1) {
				return errors.Newf(errors.ErrCodeValidation, "--similarity must be in [0, 1], got %v", similarity)
			}

			app, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			req := decision.Request{
				Mention:          mention,
				Sentence:         sentence,
				RelationshipType: relType,
				CompanyName:      company,
			}
			// An unset --similarity means "no embedding available", not 0.0.
			if cmd.Flags().Changed("similarity") {
				req.Similarity = &similarity
			}

			d, err := app.Decider.Decide(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"outcome":    d.Outcome.String(),
				"tier":       d.Tier.String(),
				"confidence": d.Confidence,
				"reason":     d.Reason,
				"cost":       d.Cost,
			})
		},
	}

	cmd.Flags().StringVar(&mention, "mention", "", "extracted company mention")
	cmd.Flags().StringVar(&sentence, "sentence", "", "sentence containing the mention")
	cmd.Flags().StringVar(&relType, "type", "", "relationship type, e.g. HAS_SUPPLIER")
	cmd.Flags().StringVar(&company, "company", "", "resolved canonical company name")
	cmd.Flags().Float64Var(&similarity, "similarity", 0, "embedding similarity in [0,1]")
	_ = cmd.MarkFlagRequired("mention")
	_ = cmd.MarkFlagRequired("sentence")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
