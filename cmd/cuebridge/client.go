// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuebridge/cuebridge/lib/config"
	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/transport"
)

// dialerFor builds the transport dialer the config asks for.
func dialerFor(cfg *config.Config) (transport.Dialer, error) {
	switch cfg.Host.Transport {
	case "tcp":
		return &transport.TCPDialer{}, nil
	case "unix":
		return &transport.UnixDialer{}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Host.Transport)
}

// connect builds a client from config, connects, and registers. The
// caller owns the returned client and must Disconnect it.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ptsl.Client, error) {
	dialer, err := dialerFor(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ptsl.NewClient(ptsl.ClientConfig{
		Dialer:         dialer,
		Address:        cfg.Host.Address,
		Logger:         logger,
		ConnectTimeout: cfg.Client.ConnectTimeout,
		CommandTimeout: cfg.Client.CommandTimeout,
	})
	if err != nil {
		return nil, err
	}

	applicationName := cfg.Client.ApplicationName
	if applicationName == "" {
		applicationName = "cuebridge"
	}
	session, err := client.ConnectAndRegister(ctx, cfg.Client.CompanyName, applicationName)
	if err != nil {
		return nil, describeClassified(err)
	}
	logger.Debug("registered", "session_id", session.ID)
	return client, nil
}

// describeClassified appends the classifier's remediation hint, when
// there is one, so the operator sees what to do next.
func describeClassified(err error) error {
	var classified *ptsl.ClassifiedError
	if !errors.As(err, &classified) || classified.UserAction == "" {
		return err
	}
	return fmt.Errorf("%w\n  hint: %s", err, classified.UserAction)
}
