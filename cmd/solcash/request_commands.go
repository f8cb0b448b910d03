package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/client"
)

func requestCommand() *cli.Command {
	return &cli.Command{
		Name:  "request",
		Usage: "Create a Solana Pay payment request via the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "Requested amount in SOL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "message",
				Usage: "Message shown to the payer",
			},
		},
		Action: requestAction,
	}
}

func requestAction(c *cli.Context) error {
	cl := client.NewClient(c.String("server-url"), nil, newLogger(c))

	req, err := cl.CreatePaymentRequest(c.Context, c.String("amount"), c.String("message"))
	if err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(req)
	}

	fmt.Printf("Payment request created\n")
	fmt.Printf("  ID:        %s\n", req.ID)
	fmt.Printf("  Pay to:    %s\n", req.PayToAddress)
	fmt.Printf("  Amount:    %g SOL\n", req.AmountSOL)
	fmt.Printf("  Reference: %s\n", req.Reference)
	fmt.Printf("  Expires:   %s\n", req.ExpiresAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  URL:       %s\n", req.PaymentURL)
	return nil
}
