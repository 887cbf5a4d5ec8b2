package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ivanmoreno/gogateway/gateway"
	"github.com/ivanmoreno/gogateway/gateway/intent"
)

func main() {
	// Mirrors the teacher's src/main.go, which loads .env unconditionally
	// for local development; a missing file is not fatal here since the
	// token may instead arrive via --token or a shell-exported variable.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gogateway: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		token           string
		envToken        string
		standardIntents bool
		noIntents       bool
		intentsRaw      string
		zlibStream      bool
		logLevel        string
	)

	cmd := &cobra.Command{
		Use:   "gogateway",
		Short: "Connect to Discord's gateway and print dispatched events",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvedToken, err := resolveToken(token, envToken)
			if err != nil {
				return err
			}

			intents, err := resolveIntents(standardIntents, noIntents, intentsRaw)
			if err != nil {
				return err
			}

			cfg := gateway.Config{
				Token:      resolvedToken,
				Intents:    intents,
				ZlibStream: zlibStream,
			}
			log := gateway.NewLogger(gateway.ParseLevel(logLevel))
			client := gateway.NewClient(cfg, log)

			client.On(func(ev gateway.Event) {
				fmt.Printf("[%d] %s: %s\n", ev.Seq, ev.Name, ev.Data)
			})

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return client.Run(ctx, true)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bot token, including the \"Bot \" prefix")
	cmd.Flags().StringVar(&envToken, "env-token", "", "name of an environment variable holding the token")
	cmd.Flags().BoolVar(&standardIntents, "standard-intents", false, "request every non-privileged intent")
	cmd.Flags().BoolVar(&noIntents, "no-intents", false, "request no intents")
	cmd.Flags().StringVar(&intentsRaw, "intents", "", "explicit intents bitmask")
	cmd.Flags().BoolVar(&zlibStream, "zlib-stream", false, "enable transport-layer zlib-stream compression")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error, or silent")

	cmd.MarkFlagsMutuallyExclusive("token", "env-token")
	cmd.MarkFlagsMutuallyExclusive("standard-intents", "no-intents", "intents")

	return cmd
}

func resolveToken(token, envToken string) (string, error) {
	if token != "" {
		return token, nil
	}
	if envToken != "" {
		v := os.Getenv(envToken)
		if v == "" {
			return "", fmt.Errorf("environment variable %q is not set", envToken)
		}
		return v, nil
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no token given: pass --token, --env-token, or set DISCORD_TOKEN")
}

func resolveIntents(standardIntents, noIntents bool, intentsRaw string) (intent.Type, error) {
	switch {
	case standardIntents:
		return intent.Standard(), nil
	case noIntents:
		return intent.None(), nil
	case intentsRaw != "":
		v, err := strconv.ParseInt(strings.TrimSpace(intentsRaw), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse --intents: %w", err)
		}
		return intent.Type(v), nil
	default:
		return intent.Standard(), nil
	}
}
