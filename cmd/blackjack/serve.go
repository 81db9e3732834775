package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/sanity-io/litter"

	"github.com/pitboss/blackjack/cmd/blackjack/shared"
	"github.com/pitboss/blackjack/internal/server"
)

// ServeCmd runs the WebSocket table service
type ServeCmd struct {
	Config  string `default:"blackjack.hcl" help:"Path to the HCL config file"`
	Addr    string `help:"Listen address override (host:port)"`
	Timeout string `help:"Per-decision timeout override (e.g. 30s)"`
	Debug   bool   `help:"Enable debug logging"`
}

func (c *ServeCmd) Run() error {
	config, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		host, portStr, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --addr port: %w", err)
		}
		config.Server.Address = host
		config.Server.Port = port
	}
	if c.Timeout != "" {
		config.Server.ActionTimeout = c.Timeout
	}
	if c.Debug {
		config.Server.LogLevel = "debug"
	}

	if err := config.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLoggerWithLevel(config.Server.LogLevel)
	if c.Debug {
		litter.D(config)
	}

	rules := config.GetRules()
	logger.Info("Starting blackjack table server",
		"addr", config.GetServerAddress(),
		"decks", rules.Decks,
		"penetration", rules.Penetration,
		"min_bet", config.GetMinBet(),
		"max_bet", config.GetMaxBet(),
		"timeout", config.GetActionTimeout())

	s := server.NewServer(config, logger, quartz.NewReal())

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
