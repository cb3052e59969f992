package main

import (
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/money"

	"github.com/spf13/cobra"
)

func cmdFlagString(cmd *cobra.Command, name string) (string, error) {
	return cmd.Flags().GetString(name)
}

// amountFlag parses a required decimal amount flag into minor units.
func amountFlag(cmd *cobra.Command, name string) (int64, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, fmt.Errorf("--%s is required", name)
	}
	return money.Parse(s)
}

// optionalAmountFlag is amountFlag for flags that may be omitted.
func optionalAmountFlag(cmd *cobra.Command, name string) (int64, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil || s == "" {
		return 0, err
	}
	return money.Parse(s)
}

// dateFlag parses the --date flag; a zero time means "today".
func dateFlag(cmd *cobra.Command) (time.Time, error) {
	s, err := cmd.Flags().GetString("date")
	if err != nil || s == "" {
		return time.Time{}, err
	}
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// currencyArg normalizes a positional currency code.
func currencyArg(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
