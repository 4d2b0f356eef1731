package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/atelier/internal/config"
	"github.com/Simplici0/atelier/internal/pricing"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newCalcCmd() *cobra.Command {
	var (
		file      string
		ratesFile string
		nssfCap   float64
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate a quote from a YAML form file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read form: %w", err)
			}
			var fv pricing.FormValues
			if err := yaml.Unmarshal(raw, &fv); err != nil {
				return fmt.Errorf("parse form: %w", err)
			}
			if err := fv.Validate(); err != nil {
				return fmt.Errorf("invalid form: %s", pricing.Summary(pricing.FieldErrors(err)))
			}

			opts, err := config.LoadRates(ratesFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("nssf-cap") {
				opts.NSSFCapPerPerson = nssfCap
			}

			c := pricing.CalculateWith(opts, fv)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), calculationTable(c))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML form file")
	cmd.Flags().StringVar(&ratesFile, "rates", "", "YAML rate card overriding statutory rates")
	cmd.Flags().Float64Var(&nssfCap, "nssf-cap", 0, "per-person NSSF cap in KES (0 = uncapped)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the calculation as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func calculationTable(c pricing.Calculations) string {
	rows := [][]string{
		{"Materials", pricing.FormatKES(c.MaterialCost)},
		{"Labor", pricing.FormatKES(c.LaborCost)},
		{"Operations", pricing.FormatKES(c.OperationsCost)},
		{"Direct cost base", pricing.FormatKES(c.DirectCostBase)},
		{"Gross salaries", pricing.FormatKES(c.TotalGrossSalary)},
		{"NSSF", pricing.FormatKES(c.NSSFAmount)},
		{"SHIF", pricing.FormatKES(c.SHIFAmount)},
		{"Salary allocation", pricing.FormatKES(c.SalaryAllocation)},
		{"Salary pool", pricing.FormatKES(c.SalaryPool)},
		{"Affiliates", pricing.FormatKES(c.AffiliateCost)},
		{"Subtotal", pricing.FormatKES(c.Subtotal)},
		{"Miscellaneous", pricing.FormatKES(c.MiscAmount)},
		{"Subtotal with misc", pricing.FormatKES(c.SubtotalWithMisc)},
		{fmt.Sprintf("Tax (%.2f%%)", c.TaxRateApplied), pricing.FormatKES(c.TaxAmount)},
		{"Total cost", pricing.FormatKES(c.TotalCost)},
		{"Profit", pricing.FormatKES(c.ProfitAmount)},
		{"Total price", pricing.FormatKES(c.TotalPrice)},
		{"Labor hours", fmt.Sprintf("%.2f (effective %.2f)", c.TotalLaborHours, c.EffectiveLaborHours)},
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Stage", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...)
	return t.String()
}
