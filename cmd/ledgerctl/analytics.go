package main

import (
	"context"
	"fmt"
	"sort"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/money"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <name> <month>",
	Short: "Spending summary by category for one month",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		currency, _ := cmd.Flags().GetString("currency")
		summary, err := a.analytics.SpendingSummary(ctx, args[0], args[1], currencyArg(currency))
		if err != nil {
			return err
		}
		printCounts(summary.Counts)
		if summary.Suggestion != "" {
			fmt.Println()
			fmt.Println(summary.Suggestion)
		}
		return nil
	}),
}

var incomeCmd = &cobra.Command{
	Use:   "income <name> <month>",
	Short: "Income summary by source for one month",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		currency, _ := cmd.Flags().GetString("currency")
		summary, err := a.analytics.IncomeSummary(ctx, args[0], args[1], currencyArg(currency))
		if err != nil {
			return err
		}
		printCounts(summary.Counts)
		return nil
	}),
}

var cashflowCmd = &cobra.Command{
	Use:   "cashflow <name> <month>",
	Short: "Cash-flow report with daily and cumulative series",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		currency, _ := cmd.Flags().GetString("currency")
		report, err := a.analytics.CashFlow(ctx, args[0], args[1], currencyArg(currency))
		if err != nil {
			return err
		}

		fmt.Printf("Cash flow in %s\n", report.Currency)
		fmt.Printf("Income: %12s   Spend: %12s   Net: %12s\n",
			money.Format(report.TotalIncome), money.Format(report.TotalSpend),
			money.Format(report.TotalIncome-report.TotalSpend))

		if len(report.IncomeSources) > 0 {
			fmt.Println("\nIncome sources:")
			printAmounts(report.IncomeSources)
		}
		if len(report.SpendSources) > 0 {
			fmt.Println("\nSpending:")
			printAmounts(report.SpendSources)
		}

		if len(report.DailyFlow) > 0 {
			days := make([]string, 0, len(report.DailyFlow))
			for d := range report.DailyFlow {
				days = append(days, d)
			}
			sort.Strings(days)
			fmt.Println("\nDaily flow (cumulative):")
			for _, d := range days {
				flow, cum := report.DailyFlow[d], report.CumulativeFlow[d]
				fmt.Printf("%s  +%12s  -%12s  (+%12s  -%12s)\n",
					d, money.Format(flow.Income), money.Format(flow.Spend),
					money.Format(cum.Income), money.Format(cum.Spend))
			}
		}

		if report.Suggestion != "" {
			fmt.Println()
			fmt.Println(report.Suggestion)
		}
		return nil
	}),
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Monthly budget targets",
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <name> <month> <currency> <category>",
	Short: "Set a monthly budget target for one category",
	Args:  cobra.ExactArgs(4),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		category := domain.Category(args[3])
		if err := a.analytics.SetBudget(ctx, args[0], args[1], currencyArg(args[2]), category, amount); err != nil {
			return err
		}
		fmt.Printf("Budget for %s in %s: %s %s\n", category, args[1], money.Format(amount), currencyArg(args[2]))
		return nil
	}),
}

var budgetShowCmd = &cobra.Command{
	Use:   "show <name> <month> <currency>",
	Short: "Compare budget targets against actual spending",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		lines, err := a.analytics.BudgetVsActual(ctx, args[0], args[1], currencyArg(args[2]))
		if err != nil {
			return err
		}
		fmt.Printf("%-18s %12s %12s %12s\n", "category", "budget", "spent", "remaining")
		for _, l := range lines {
			fmt.Printf("%-18s %12s %12s %12s\n", l.Category,
				money.Format(l.Budget), money.Format(l.Spent), money.Format(l.Budget-l.Spent))
		}
		return nil
	}),
}

func printCounts(counts map[domain.Category]int) {
	if len(counts) == 0 {
		fmt.Println("No entries")
		return
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("%-18s %4d\n", c, counts[domain.Category(c)])
	}
}

func printAmounts(amounts map[domain.Category]int64) {
	cats := make([]string, 0, len(amounts))
	for c := range amounts {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("%-18s %12s\n", c, money.Format(amounts[domain.Category(c)]))
	}
}

func init() {
	summaryCmd.Flags().String("currency", ports.CurrencyAll, "restrict to one currency")
	incomeCmd.Flags().String("currency", ports.CurrencyAll, "restrict to one currency")
	cashflowCmd.Flags().String("currency", ports.CurrencyAll, "report currency (ALL converts into the reference currency)")
	budgetSetCmd.Flags().String("amount", "", "monthly target in major units (required)")
	_ = budgetSetCmd.MarkFlagRequired("amount")
	budgetCmd.AddCommand(budgetSetCmd, budgetShowCmd)
}
