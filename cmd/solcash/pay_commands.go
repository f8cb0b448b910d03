package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/service/payment"
)

func payCommand() *cli.Command {
	return &cli.Command{
		Name:      "pay",
		Usage:     "Send a SOL payment with an attached purpose",
		ArgsUsage: "--to <address> --amount <sol> [--purpose <text>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Recipient wallet address (base58)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "Amount in SOL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "purpose",
				Usage: "Free-form description of the payment",
			},
			&cli.BoolFlag{
				Name:  "no-wait",
				Usage: "Return after submission without waiting for finality",
			},
		},
		Action: payAction,
	}
}

func payAction(c *cli.Context) error {
	noWait := c.Bool("no-wait")

	svc, err := newLocalService(c, !noWait)
	if err != nil {
		return err
	}

	receipt, err := svc.SubmitPayment(c.Context, payment.SubmitParams{
		PayeeText:           c.String("to"),
		AmountText:          c.String("amount"),
		Purpose:             c.String("purpose"),
		WaitForConfirmation: !noWait,
	})
	if err != nil {
		return fmt.Errorf("payment failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(receipt.Record)
	}

	fmt.Print(formatReceipt(receipt))
	return nil
}

func formatReceipt(receipt *payment.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment sent\n")
	fmt.Fprintf(&b, "  Signature: %s\n", receipt.Signature)
	fmt.Fprintf(&b, "  Reference: %s\n", receipt.Reference)
	fmt.Fprintf(&b, "  To:        %s\n", receipt.Record.To.Name)
	fmt.Fprintf(&b, "  Amount:    %g SOL\n", receipt.Record.Amount)
	fmt.Fprintf(&b, "  Status:    %s\n", receipt.Record.Status)
	return b.String()
}
