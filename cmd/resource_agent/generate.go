package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resource-curator/internal/types"
)

type generateOptions struct {
	users       []string
	concurrency int
	out         string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate resource bundles for one or more users",
		Long: `Runs the pipeline for each --user (UUID or email) against their latest onboarding answers,
persists the bundles and prints one JSON summary per line.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.users, "user", "u", nil, "User UUID or email (repeatable)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 2, "Maximum number of concurrent runs")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write summaries to this file instead of stdout")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	if opts.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	ctx := cmd.Context()
	a, err := buildApp(ctx, root, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	summaries := make([]*types.BundleSummary, len(opts.users))
	var g errgroup.Group
	g.SetLimit(opts.concurrency)
	for i, ref := range opts.users {
		g.Go(func() error {
			summary, err := a.service.Generate(ctx, ref)
			if err != nil {
				a.log.Error("generation failed", "user", ref, "error", err)
				return fmt.Errorf("user %s: %w", ref, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	runErr := g.Wait()

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return runErr
}
