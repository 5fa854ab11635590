package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var lookupChildren bool

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup CODE",
		Short: "Look up an HTS code in the catalog",
		Long:  "Look up one HTS code and show its place in the schedule hierarchy.\nDots in the code are accepted (6109.10.00 and 61091000 are equivalent).",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookup,
	}

	cmd.Flags().BoolVar(&lookupChildren, "children", false, "list only the immediate children")

	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	catalog := cliCtx.Client.Catalog()
	out := cmd.OutOrStdout()

	if lookupChildren {
		children, err := catalog.GetChildren(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if wantsJSON(cliCtx) {
			return printJSON(cmd, children)
		}
		if len(children) == 0 {
			fmt.Fprintln(out, "No children; this is a leaf code.")
			return nil
		}
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Code", "Level", "Rate", "Description"})
		table.SetBorder(false)
		for _, child := range children {
			table.Append([]string{child.Code, child.Level, child.BaseRate, child.Description})
		}
		table.Render()
		return nil
	}

	detail, err := catalog.GetCode(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if wantsJSON(cliCtx) {
		return printJSON(cmd, detail)
	}

	fmt.Fprintf(out, "%s %s  [%s]\n", color.GreenString("HTS"), color.New(color.Bold).Sprint(detail.DisplayCode), detail.Level)
	fmt.Fprintf(out, "  %s\n", detail.FullDescription)
	if detail.BaseRate != "" {
		fmt.Fprintf(out, "  Base rate: %s\n", detail.BaseRate)
	}
	if len(detail.UnitOfQuantity) > 0 {
		fmt.Fprintf(out, "  Units: %v\n", detail.UnitOfQuantity)
	}

	if len(detail.Ancestors) > 0 {
		fmt.Fprintln(out, "\nHierarchy:")
		for i, ancestor := range detail.Ancestors {
			fmt.Fprintf(out, "  %*s%s  %s\n", i*2, "", ancestor.Code, ancestor.Description)
		}
	}

	if len(detail.Children) > 0 {
		fmt.Fprintln(out, "\nChildren:")
		for _, child := range detail.Children {
			fmt.Fprintf(out, "  %-12s %s\n", child.Code, child.Description)
		}
	}

	return nil
}
