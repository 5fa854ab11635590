package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clearfreight/tariffscope/pkg/client"
)

var (
	classifyMaterial  string
	classifyOrigin    string
	classifyUnitValue float64
	classifyAnswers   []string
	classifyTrace     bool
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify \"product description\"",
		Short: "Classify a product description into an HTS code",
		Long:  "Classify a free-text product description into the most likely\nHarmonized Tariff Schedule code, with alternatives and duty breakdown.",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}

	cmd.Flags().StringVar(&classifyMaterial, "material", "", "primary material, if known (e.g. cotton)")
	cmd.Flags().StringVar(&classifyOrigin, "origin", "", "ISO country of origin (e.g. CN)")
	cmd.Flags().Float64Var(&classifyUnitValue, "unit-value", 0, "declared per-unit value in dollars")
	cmd.Flags().StringArrayVar(&classifyAnswers, "answer", nil, "answer to a prior question as question=code (repeatable)")
	cmd.Flags().BoolVar(&classifyTrace, "trace", false, "include the classification trace")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	answers, err := parseAnswers(classifyAnswers)
	if err != nil {
		return err
	}

	req := &client.ClassifyRequest{
		Description:     args[0],
		Material:        classifyMaterial,
		CountryOfOrigin: strings.ToUpper(classifyOrigin),
		UnitValue:       classifyUnitValue,
		Answers:         answers,
	}

	classifier := cliCtx.Client.Classify()
	var result *client.ClassificationResult
	if classifyTrace {
		result, err = classifier.ClassifyWithTrace(cmd.Context(), req)
	} else {
		result, err = classifier.Classify(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if wantsJSON(cliCtx) {
		return printJSON(cmd, result)
	}
	return renderClassification(cmd, result)
}

// parseAnswers splits repeated question=code flags into a map.
func parseAnswers(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	answers := make(map[string]string, len(raw))
	for _, pair := range raw {
		question, code, found := strings.Cut(pair, "=")
		if !found || question == "" || code == "" {
			return nil, fmt.Errorf("invalid --answer %q, expected question=code", pair)
		}
		answers[question] = code
	}
	return answers, nil
}

func renderClassification(cmd *cobra.Command, result *client.ClassificationResult) error {
	out := cmd.OutOrStdout()

	if !result.Success {
		fmt.Fprintln(out, color.YellowString("No matching HTS code found."))
		fmt.Fprintln(out, "Try a more specific description, including the material and product type.")
		return nil
	}

	if result.Primary != nil {
		p := result.Primary
		fmt.Fprintf(out, "%s %s  (confidence %.0f%%)\n",
			color.GreenString("HTS"), color.New(color.Bold).Sprint(p.DisplayCode), p.Confidence)
		fmt.Fprintf(out, "  %s\n", p.FullDescription)
		if p.PlainLanguage != "" {
			fmt.Fprintf(out, "  %s\n", p.PlainLanguage)
		}
		if p.Justification != "" {
			fmt.Fprintf(out, "  Why: %s\n", p.Justification)
		}
		if p.DutyBreakdown != nil {
			fmt.Fprintln(out)
			renderBreakdown(cmd, p.DutyBreakdown)
		}
	}

	if result.NeedsClarification != nil {
		q := result.NeedsClarification
		fmt.Fprintf(out, "\n%s %s\n", color.YellowString("?"), q.Question)
		for _, opt := range q.Options {
			fmt.Fprintf(out, "  %-14s %s: %s\n", opt.DisplayCode, opt.Label, opt.Description)
		}
		fmt.Fprintln(out, "\nRe-run with --answer to pin the classification.")
	}

	if len(result.Alternatives) > 0 {
		fmt.Fprintf(out, "\n%s\n", "Alternatives:")
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Code", "Confidence", "Description"})
		table.SetBorder(false)
		for _, alt := range result.Alternatives {
			table.Append([]string{
				alt.DisplayCode,
				fmt.Sprintf("%.0f%%", alt.Confidence),
				alt.Description,
			})
		}
		table.Render()
	}

	if cc := result.ConditionalClassification; cc != nil && len(cc.Questions) > 0 {
		fmt.Fprintf(out, "\n%s\n", "The final code can depend on value or size:")
		for _, q := range cc.Questions {
			fmt.Fprintf(out, "  %s\n", q.Question)
			for _, opt := range q.Options {
				fmt.Fprintf(out, "    %-14s %s\n", opt.DisplayCode, opt.Label)
			}
		}
	}

	if result.Trace != nil {
		tr := result.Trace
		fmt.Fprintf(out, "\nTrace (%dms, %d candidates via %s):\n", tr.ElapsedMS, tr.Candidates, tr.RetrievalPath)
		for _, step := range tr.Steps {
			fmt.Fprintf(out, "  - %s\n", step)
		}
	}

	return nil
}
