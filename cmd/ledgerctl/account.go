package main

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/money"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Create a customer account",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		secret, err := cmdFlagString(cmd, "secret")
		if err != nil {
			return err
		}
		initial, err := optionalAmountFlag(cmd, "initial")
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}

		result, err := a.accounts.Register(ctx, ports.RegisterRequest{
			Name:          args[0],
			Secret:        secret,
			Role:          domain.RoleCustomer,
			InitialAmount: initial,
			Date:          date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (id %s)\n", args[0], result.CustomerID)
		if result.Balance > 0 {
			fmt.Printf("Opening balance: %s %s\n", money.Format(result.Balance), a.cfg.Rates.ReferenceCurrency)
		}
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Verify account credentials",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		secret, err := cmdFlagString(cmd, "secret")
		if err != nil {
			return err
		}
		customer, err := a.accounts.Login(ctx, args[0], secret)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s (%s)\n", customer.Name, customer.Role)
		return nil
	}),
}

var passwdCmd = &cobra.Command{
	Use:   "passwd <name>",
	Short: "Change an account secret",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		oldSecret, err := cmdFlagString(cmd, "old")
		if err != nil {
			return err
		}
		newSecret, err := cmdFlagString(cmd, "new")
		if err != nil {
			return err
		}
		if err := a.accounts.ChangeSecret(ctx, args[0], oldSecret, newSecret); err != nil {
			return err
		}
		fmt.Println("Secret changed")
		return nil
	}),
}

var emailCmd = &cobra.Command{
	Use:   "email <name> <address>",
	Short: "Set the notification email address",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.accounts.UpdateEmail(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Email for %s set to %s\n", args[0], args[1])
		return nil
	}),
}

var walletsCmd = &cobra.Command{
	Use:   "wallets <name>",
	Short: "List a customer's wallets",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		wallets, err := a.accounts.Wallets(ctx, args[0])
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println("No wallets yet")
			return nil
		}
		for _, w := range wallets {
			fmt.Printf("%s  %12s\n", w.Currency, money.Format(w.Balance))
		}
		return nil
	}),
}

func init() {
	registerCmd.Flags().String("secret", "", "account secret (required)")
	registerCmd.Flags().String("initial", "", "opening balance in the reference currency, e.g. 1000.00")
	registerCmd.Flags().String("date", "", "opening entry date (YYYY-MM-DD, default today)")
	_ = registerCmd.MarkFlagRequired("secret")

	loginCmd.Flags().String("secret", "", "account secret (required)")
	_ = loginCmd.MarkFlagRequired("secret")

	passwdCmd.Flags().String("old", "", "current secret (required)")
	passwdCmd.Flags().String("new", "", "new secret (required)")
	_ = passwdCmd.MarkFlagRequired("old")
	_ = passwdCmd.MarkFlagRequired("new")
}
