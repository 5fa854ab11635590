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
	dutyOrigin    string
	dutyBaseRate  string
	dutyUnitValue float64
)

// NewDutyCmd creates the duty command.
func NewDutyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duty CODE",
		Short: "Compute the stacked duty rate for an HTS code",
		Long:  "Compute the full duty stack for an HTS code and country of origin:\nbase rate plus Section 301, Section 232, IEEPA, and related programs.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDuty,
	}

	cmd.Flags().StringVar(&dutyOrigin, "origin", "", "ISO country of origin (e.g. CN)")
	cmd.Flags().StringVar(&dutyBaseRate, "base-rate", "", "override the catalog base rate (e.g. \"16.5%\")")
	cmd.Flags().Float64Var(&dutyUnitValue, "value", 0, "declared per-unit value in dollars")

	return cmd
}

func runDuty(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	breakdown, err := cliCtx.Client.Duty().Calculate(cmd.Context(), &client.DutyRequest{
		Code:            args[0],
		BaseRate:        dutyBaseRate,
		CountryOfOrigin: strings.ToUpper(dutyOrigin),
		UnitValue:       dutyUnitValue,
	})
	if err != nil {
		return err
	}

	if wantsJSON(cliCtx) {
		return printJSON(cmd, breakdown)
	}
	renderBreakdown(cmd, breakdown)
	return nil
}

func renderBreakdown(cmd *cobra.Command, b *client.DutyBreakdown) {
	out := cmd.OutOrStdout()

	origin := b.CountryCode
	if origin == "" {
		origin = "(no origin)"
	}
	fmt.Fprintf(out, "Duty for %s from %s\n", color.New(color.Bold).Sprint(b.DisplayCode), origin)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Component", "Rate"})
	table.SetBorder(false)
	table.Append([]string{fmt.Sprintf("Base rate (%s)", b.BaseRateRaw), fmt.Sprintf("%.2f%%", b.BaseRate)})
	for _, item := range b.AdditionalDuties {
		table.Append([]string{item.Name, fmt.Sprintf("%.2f%%", item.Rate)})
	}
	table.Append([]string{"Total", color.New(color.Bold).Sprintf("%.2f%%", b.TotalRate)})
	table.Render()

	if b.SpecificComponent != "" {
		fmt.Fprintf(out, "Plus specific component: %s (not included in the total)\n", b.SpecificComponent)
	}
	if b.RateUnparseable {
		fmt.Fprintln(out, color.YellowString("The base rate could not be parsed and was treated as 0%."))
	}
	if b.EstimatedDutyPerUnit > 0 {
		fmt.Fprintf(out, "Estimated duty per unit: $%.2f\n", b.EstimatedDutyPerUnit)
	}
	if b.ADCVDAdvisory != "" {
		fmt.Fprintf(out, "%s %s\n", color.RedString("AD/CVD:"), b.ADCVDAdvisory)
	}
	for _, advisory := range b.Advisories {
		fmt.Fprintf(out, "%s %s\n", color.YellowString("Note:"), advisory)
	}

	fmt.Fprintf(out, "\nData version %s. %s\n", b.DataVersion, b.Disclaimer)
}
