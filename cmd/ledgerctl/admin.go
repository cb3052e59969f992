package main

import (
	"context"
	"fmt"
	"sort"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manual exchange-rate overrides",
}

var ratesSetCmd = &cobra.Command{
	Use:   "set <from> <to> <rate>",
	Short: "Pin the rate for one currency pair",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		rate, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", args[2], err)
		}
		from, to := currencyArg(args[0]), currencyArg(args[1])
		if err := a.rates.SetOverride(ctx, from, to, rate); err != nil {
			return err
		}
		fmt.Printf("Override set: 1 %s = %s %s\n", from, rate.String(), to)
		return nil
	}),
}

var ratesRemoveCmd = &cobra.Command{
	Use:   "remove <from> <to>",
	Short: "Remove a pinned rate",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		from, to := currencyArg(args[0]), currencyArg(args[1])
		if err := a.rates.RemoveOverride(ctx, from, to); err != nil {
			return err
		}
		fmt.Printf("Override removed: %s -> %s\n", from, to)
		return nil
	}),
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pinned rates",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		overrides, err := a.rates.Overrides(ctx)
		if err != nil {
			return err
		}
		if len(overrides) == 0 {
			fmt.Println("No overrides")
			return nil
		}
		pairs := make([]string, 0, len(overrides))
		for p := range overrides {
			pairs = append(pairs, p)
		}
		sort.Strings(pairs)
		for _, p := range pairs {
			fmt.Printf("%-10s %s\n", p, overrides[p].String())
		}
		return nil
	}),
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Account administration",
}

var adminAdjustCmd = &cobra.Command{
	Use:   "adjust <name> <currency>",
	Short: "Post a balance correction; negative amounts debit",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		balance, err := a.ledger.AdminAdjust(ctx, ports.AdjustRequest{
			Customer: args[0],
			Currency: currencyArg(args[1]),
			Amount:   amount,
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("New balance: %s %s\n", money.Format(balance), currencyArg(args[1]))
		return nil
	}),
}

var adminCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List every account",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		customers, err := a.accounts.ListCustomers(ctx)
		if err != nil {
			return err
		}
		for _, c := range customers {
			status := "active"
			if !c.IsActive {
				status = "suspended"
			}
			fmt.Printf("%s  %-20s %-8s %-9s %s\n", c.ID, c.Name, c.Role, status, c.Email)
		}
		return nil
	}),
}

var adminDetailsCmd = &cobra.Command{
	Use:   "details <customer-id>",
	Short: "Show one account with converted total holdings",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid customer id %q: %w", args[0], err)
		}
		details, err := a.accounts.CustomerDetails(ctx, id)
		if err != nil {
			return err
		}
		c := details.Customer
		fmt.Printf("%s (%s, active=%t, email=%s)\n", c.Name, c.Role, c.IsActive, c.Email)
		for _, w := range details.Wallets {
			fmt.Printf("  %s  %12s\n", w.Currency, money.Format(w.Balance))
		}
		fmt.Printf("Total holdings: %s %s\n",
			money.Format(details.ReferenceTotal), a.cfg.Rates.ReferenceCurrency)
		return nil
	}),
}

var adminUpdateCmd = &cobra.Command{
	Use:   "update <customer-id>",
	Short: "Edit an account's email, role or status",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid customer id %q: %w", args[0], err)
		}
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		active, _ := cmd.Flags().GetBool("active")

		if err := a.accounts.UpdateCustomer(ctx, id, email, domain.Role(role), active); err != nil {
			return err
		}
		fmt.Println("Customer updated")
		return nil
	}),
}

var adminResetCmd = &cobra.Command{
	Use:   "reset-secret <customer-id>",
	Short: "Generate and store a new random secret",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid customer id %q: %w", args[0], err)
		}
		secret, err := a.accounts.ResetSecret(ctx, id)
		if err != nil {
			return err
		}
		// Printed once; the ledger only stores the hash.
		fmt.Printf("New secret: %s\n", secret)
		return nil
	}),
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "System-wide totals",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		stats, err := a.accounts.SystemStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Customers: %d (%d active)\n", stats.TotalCustomers, stats.ActiveCustomers)
		currencies := make([]string, 0, len(stats.AssetsByCurrency))
		for c := range stats.AssetsByCurrency {
			currencies = append(currencies, c)
		}
		sort.Strings(currencies)
		for _, c := range currencies {
			fmt.Printf("  %s  %12s\n", c, money.Format(stats.AssetsByCurrency[c]))
		}
		fmt.Printf("Total assets: %s %s\n",
			money.Format(stats.ReferenceAssets), a.cfg.Rates.ReferenceCurrency)
		return nil
	}),
}

func init() {
	ratesCmd.AddCommand(ratesSetCmd, ratesRemoveCmd, ratesListCmd)

	adminAdjustCmd.Flags().String("amount", "", "signed amount in major units (required)")
	adminAdjustCmd.Flags().String("note", "", "reason for the correction")
	_ = adminAdjustCmd.MarkFlagRequired("amount")

	adminUpdateCmd.Flags().String("email", "", "notification address")
	adminUpdateCmd.Flags().String("role", string(domain.RoleCustomer), "customer or admin")
	adminUpdateCmd.Flags().Bool("active", true, "account enabled")

	adminCmd.AddCommand(adminAdjustCmd, adminCustomersCmd, adminDetailsCmd,
		adminUpdateCmd, adminResetCmd, adminStatsCmd)
}
