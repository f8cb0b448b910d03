package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/client"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health",
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	cl := client.NewClient(c.String("server-url"), nil, newLogger(c))
	if err := cl.Health(c.Context); err != nil {
		return fmt.Errorf("server is unhealthy: %w", err)
	}
	fmt.Println("OK")
	return nil
}
