// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/cuebridge/cuebridge/lib/config"
	"github.com/cuebridge/cuebridge/marker"
	"github.com/cuebridge/cuebridge/ptsl"
	"github.com/cuebridge/cuebridge/review"
)

func runSessionInfo(args []string) error {
	var common commonFlags
	flagSet := pflag.NewFlagSet("session-info", pflag.ContinueOnError)
	common.register(flagSet)
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	cfg, err := config.Load(common.configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := connect(ctx, cfg, common.logger())
	if err != nil {
		return err
	}
	defer client.Disconnect()

	info, err := client.GetSessionInfo(ctx)
	if err != nil {
		return describeClassified(err)
	}

	fmt.Printf("session:       %s\n", info.Name)
	fmt.Printf("sample rate:   %d Hz (%s)\n", info.SampleRate, info.SampleRateSymbol)
	fmt.Printf("timecode rate: %g fps (%s)\n", info.FrameRate, info.TimeCodeRate)
	if len(info.PossibleTimeCodeRates) > 0 {
		fmt.Printf("switchable to:")
		for _, rate := range info.PossibleTimeCodeRates {
			fmt.Printf(" %s", rate)
		}
		fmt.Println()
	}
	return nil
}

func runValidate(args []string) error {
	var common commonFlags
	var batchPath string
	flagSet := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	common.register(flagSet)
	flagSet.StringVar(&batchPath, "batch", "", "comment batch file (.yaml, .yml, .json, .jsonc); omit for session-only validation")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	cfg, err := config.Load(common.configPath)
	if err != nil {
		return err
	}

	var batch *review.Batch
	if batchPath != "" {
		if batch, err = review.LoadBatch(batchPath); err != nil {
			return err
		}
	}

	ctx := context.Background()
	client, err := connect(ctx, cfg, common.logger())
	if err != nil {
		return err
	}
	defer client.Disconnect()

	// A nil interface, not a typed nil, when no batch was given.
	var commentBatch ptsl.CommentBatch
	if batch != nil {
		commentBatch = batch
	}
	report, err := client.ValidateSessionCompatibility(ctx, commentBatch)
	if err != nil {
		return describeClassified(err)
	}

	printReport(report)
	if !report.MarkerCreationReady {
		return fmt.Errorf("session is not ready for marker creation")
	}
	return nil
}

func printReport(report *ptsl.CompatibilityReport) {
	fmt.Println(report.Summary)
	for _, issue := range report.Errors {
		fmt.Printf("  error: [%s] %s\n", issue.Code, issue.Message)
	}
	for _, issue := range report.Warnings {
		fmt.Printf("  warning: [%s] %s\n", issue.Code, issue.Message)
	}
	for _, issue := range report.Recommendations {
		fmt.Printf("  recommendation: [%s] %s\n", issue.Code, issue.Message)
	}
}

func runPush(args []string) error {
	var common commonFlags
	var batchPath string
	var force bool
	flagSet := pflag.NewFlagSet("push", pflag.ContinueOnError)
	common.register(flagSet)
	flagSet.StringVar(&batchPath, "batch", "", "comment batch file (.yaml, .yml, .json, .jsonc)")
	flagSet.BoolVar(&force, "force", false, "push even when validation reports warnings")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}
	if batchPath == "" {
		return fmt.Errorf("--batch is required")
	}

	cfg, err := config.Load(common.configPath)
	if err != nil {
		return err
	}
	batch, err := review.LoadBatch(batchPath)
	if err != nil {
		return err
	}

	logger := common.logger()
	ctx := context.Background()
	client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect()

	report, err := client.ValidateSessionCompatibility(ctx, batch)
	if err != nil {
		return describeClassified(err)
	}
	if !report.MarkerCreationReady {
		printReport(report)
		return fmt.Errorf("session is not ready for marker creation; fix the errors above")
	}
	if len(report.Warnings) > 0 && !force {
		printReport(report)
		return fmt.Errorf("validation reported warnings; pass --force to push anyway")
	}

	syncer, err := review.NewSyncer(review.SyncerConfig{
		Host:        client,
		Concurrency: cfg.Sync.Concurrency,
		Logger:      logger,
		OnProgress:  progressPrinter(),
		AuditPath:   cfg.Sync.AuditLog,
	})
	if err != nil {
		return err
	}

	result, syncErr := syncer.Sync(ctx, batch)
	fmt.Printf("created %d of %d markers\n", result.Created, result.Total)
	for _, failure := range result.Failures {
		verdict := ""
		if failure.Retryable {
			verdict = " (retryable)"
		}
		fmt.Printf("  failed at %s: %v%s\n", failure.Comment.Timestamp, failure.Err, verdict)
	}
	if syncErr != nil {
		return describeClassified(syncErr)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("%d marker(s) were not created", len(result.Failures))
	}
	return nil
}

// progressPrinter reports completions on stderr, with the in-place
// rewriting reserved for interactive terminals.
func progressPrinter() func(review.Progress) {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	return func(progress review.Progress) {
		if interactive {
			fmt.Fprintf(os.Stderr, "\r%d/%d (%.0f%%)", progress.Current, progress.Total, progress.Percent)
			if progress.Current == progress.Total {
				fmt.Fprintln(os.Stderr)
			}
			return
		}
		fmt.Fprintf(os.Stderr, "%d/%d (%.0f%%)\n", progress.Current, progress.Total, progress.Percent)
	}
}

func runNewTracks(args []string) error {
	var common commonFlags
	var count int
	var trackType, trackFormat, trackName string
	flagSet := pflag.NewFlagSet("new-tracks", pflag.ContinueOnError)
	common.register(flagSet)
	flagSet.IntVar(&count, "count", 1, "number of tracks to create")
	flagSet.StringVar(&trackType, "type", "audio", "track type: audio, midi, aux, instrument, videoOnly")
	flagSet.StringVar(&trackFormat, "format", "mono", "track format: mono, stereo, surround51")
	flagSet.StringVar(&trackName, "name", "", "base name for the new tracks")
	if done, err := parseFlags(flagSet, args); done || err != nil {
		return err
	}

	cfg, err := config.Load(common.configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := connect(ctx, cfg, common.logger())
	if err != nil {
		return err
	}
	defer client.Disconnect()

	request, err := marker.NewTracksRequest(count, trackType, trackFormat, trackName)
	if err != nil {
		return err
	}
	created, err := client.CreateNewTracks(ctx, request)
	if err != nil {
		return describeClassified(err)
	}
	fmt.Printf("created %d track(s)\n", created.NumberOfTracks)
	for _, name := range created.CreatedTrackNames {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
