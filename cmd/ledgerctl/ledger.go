package main

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/money"

	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <name> <currency>",
	Short: "Deposit funds into a wallet",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		balance, err := a.ledger.Deposit(ctx, ports.DepositRequest{
			Customer: args[0],
			Currency: currencyArg(args[1]),
			Amount:   amount,
			Date:     date,
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("New balance: %s %s\n", money.Format(balance), currencyArg(args[1]))
		return nil
	}),
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <name> <currency>",
	Short: "Withdraw funds from a wallet",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		balance, err := a.ledger.Withdraw(ctx, ports.WithdrawRequest{
			Customer: args[0],
			Currency: currencyArg(args[1]),
			Amount:   amount,
			Date:     date,
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("New balance: %s %s\n", money.Format(balance), currencyArg(args[1]))
		return nil
	}),
}

var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <currency>",
	Short: "Transfer funds to another customer",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")

		balance, err := a.ledger.Transfer(ctx, ports.TransferRequest{
			From:     args[0],
			To:       args[1],
			Currency: currencyArg(args[2]),
			Amount:   amount,
			Date:     date,
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Sent %s %s to %s; your balance: %s\n",
			money.Format(amount), currencyArg(args[2]), args[1], money.Format(balance))
		return nil
	}),
}

var exchangeCmd = &cobra.Command{
	Use:   "exchange <name> <from-currency> <to-currency>",
	Short: "Convert funds between two of a customer's wallets",
	Args:  cobra.ExactArgs(3),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		amount, err := amountFlag(cmd, "amount")
		if err != nil {
			return err
		}
		date, err := dateFlag(cmd)
		if err != nil {
			return err
		}

		result, err := a.ledger.Exchange(ctx, ports.ExchangeRequest{
			Customer:     args[0],
			FromCurrency: currencyArg(args[1]),
			ToCurrency:   currencyArg(args[2]),
			FromAmount:   amount,
			Date:         date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Exchanged %s %s -> %s %s at %s\n",
			money.Format(amount), currencyArg(args[1]),
			money.Format(result.ToAmount), currencyArg(args[2]),
			result.Rate.String())
		fmt.Printf("Balances: %s %s, %s %s\n",
			money.Format(result.FromBalance), currencyArg(args[1]),
			money.Format(result.ToBalance), currencyArg(args[2]))
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "List ledger entries, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		entries, err := a.ledger.History(ctx, args[0], month)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No entries")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-13s %s %12s  balance %12s",
				e.Date.Format(domain.DateFormat), e.Type, e.Currency,
				money.Format(e.Amount), money.Format(e.BalanceAfter))
			if e.Counterparty != "" {
				line += "  [" + e.Counterparty + "]"
			}
			if e.Note != "" {
				line += "  " + e.Note
			}
			fmt.Println(line)
		}
		return nil
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{depositCmd, withdrawCmd, transferCmd, exchangeCmd} {
		cmd.Flags().String("amount", "", "amount in major units, e.g. 100.50 (required)")
		cmd.Flags().String("date", "", "entry date (YYYY-MM-DD, default today)")
		_ = cmd.MarkFlagRequired("amount")
	}
	depositCmd.Flags().String("note", "", "free-text note")
	withdrawCmd.Flags().String("note", "", "free-text note")
	transferCmd.Flags().String("note", "", "free-text note")

	historyCmd.Flags().String("month", "", "restrict to one month (YYYY-MM)")
}
