// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// cuebridge pushes review-comment batches into a digital audio
// workstation session as timeline markers, over the workstation's
// scripting protocol.
//
// Subcommands:
//
//	session-info   print the open session's name, sample rate, and
//	               timecode rate
//	validate       pre-flight a comment batch against the session
//	               without creating anything
//	push           create one marker per comment
//	new-tracks     add tracks to the session
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

// version is stamped by the release build.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("a subcommand is required")
	}

	switch args[0] {
	case "--version", "version":
		fmt.Printf("cuebridge %s\n", version)
		return nil
	case "--help", "-h", "help":
		printUsage()
		return nil
	case "session-info":
		return runSessionInfo(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "push":
		return runPush(args[1:])
	case "new-tracks":
		return runNewTracks(args[1:])
	}
	printUsage()
	return fmt.Errorf("unknown subcommand %q", args[0])
}

func printUsage() {
	fmt.Fprint(os.Stderr, `cuebridge pushes review comments into a workstation session as
timeline markers.

Usage: cuebridge <subcommand> [flags]

Subcommands:
  session-info   print the open session's parameters
  validate       pre-flight a comment batch against the session
  push           create one marker per comment
  new-tracks     add tracks to the session
  version        print the version

Every subcommand takes --config pointing at the YAML config file;
the CUEBRIDGE_CONFIG environment variable is the fallback.
`)
}

// commonFlags are the flags every subcommand shares.
type commonFlags struct {
	configPath string
	verbose    bool
}

func (f *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "path to the YAML config file")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
}

func (f *commonFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseFlags(flagSet *pflag.FlagSet, args []string) (bool, error) {
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return false, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return false, nil
}
