package main

import (
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/service/profile"
	"github.com/brojonat/solcash/service/solana"
)

func profileStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check whether the wallet's on-chain profile exists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "program",
				Usage:    "Profile program ID (base58)",
				EnvVars:  []string{"PROFILE_PROGRAM_ID"},
				Required: true,
			},
		},
		Action: profileStatusAction,
	}
}

func profileStatusAction(c *cli.Context) error {
	key, err := loadKeypair(c)
	if err != nil {
		return err
	}
	programID, err := solanago.PublicKeyFromBase58(c.String("program"))
	if err != nil {
		return fmt.Errorf("invalid program ID: %w", err)
	}

	logger := newLogger(c)
	rpcClient := solana.NewRPCClient(c.String("rpc-url"))
	svc := profile.NewService(rpcClient, programID, logger)

	owner := key.PublicKey()
	acct, exists, err := svc.Lookup(c.Context, owner)
	if err != nil {
		return fmt.Errorf("profile lookup failed: %w", err)
	}

	if !exists {
		fmt.Printf("No profile for %s (run 'solcash profile init' to create one)\n", owner)
		return nil
	}

	fmt.Printf("Profile found\n")
	fmt.Printf("  Owner:    %s\n", owner)
	fmt.Printf("  Address:  %s\n", acct.Address)
	fmt.Printf("  Lamports: %d\n", acct.Lamports)
	return nil
}

func profileInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the wallet's on-chain profile account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "program",
				Usage:    "Profile program ID (base58)",
				EnvVars:  []string{"PROFILE_PROGRAM_ID"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Display name for the profile",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "avatar",
				Usage: "Avatar URL for the profile",
			},
		},
		Action: profileInitAction,
	}
}

func profileInitAction(c *cli.Context) error {
	key, err := loadKeypair(c)
	if err != nil {
		return err
	}
	programID, err := solanago.PublicKeyFromBase58(c.String("program"))
	if err != nil {
		return fmt.Errorf("invalid program ID: %w", err)
	}

	logger := newLogger(c)
	rpcClient := solana.NewRPCClient(c.String("rpc-url"))
	signer := solana.NewWalletSigner(key, rpcClient, "cli", nil, logger)
	svc := profile.NewService(rpcClient, programID, logger)

	owner := key.PublicKey()

	// Fail fast: initializing an existing profile would bounce at the program.
	if _, exists, err := svc.Lookup(c.Context, owner); err != nil {
		return fmt.Errorf("profile lookup failed: %w", err)
	} else if exists {
		return fmt.Errorf("profile already exists for %s", owner)
	}

	sig, err := svc.Initialize(c.Context, owner, c.String("name"), c.String("avatar"), signer)
	if err != nil {
		return fmt.Errorf("profile initialization failed: %w", err)
	}

	fmt.Printf("Profile initialization submitted\n")
	fmt.Printf("  Owner:     %s\n", owner)
	fmt.Printf("  Signature: %s\n", sig)
	return nil
}
