package main

import (
	"errors"
	"fmt"
	"os"

	"daybook/internal/cli"
	"daybook/internal/log"
)

func main() {
	// Load .env file for local development (ignored when absent)
	cli.LoadEnvFile()

	// Logs go to stderr so tables on stdout stay clean
	logger := cli.SetupLogger(os.Stderr, log.ComponentCLI, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()

	resolver, err := cli.NewResolver(cfg)
	if err != nil {
		logger.Error("Invalid role configuration", log.FieldError, err)
		os.Exit(1)
	}

	a := &app{svc: res.Service, roles: resolver, out: os.Stdout}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "daybook:", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}
