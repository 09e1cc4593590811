package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-ai/codelens/analysis"
	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/orchestrator"
	"github.com/codelens-ai/codelens/project"
)

// docSections are generated after the overview, which they consume as context.
var docSections = []string{
	"architecture",
	"getting-started",
	"configuration",
	"development",
}

func newDocsCmd() *cobra.Command {
	var (
		limit    int
		noCache  bool
		provider string
		model    string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "docs [dir]",
		Short: "Generate project documentation (overview plus sections)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			a, err := newApp(cmd, dir, provider, model, noCache)
			if err != nil {
				return err
			}
			defer a.close()

			snap, err := project.Scan(dir)
			if err != nil {
				return err
			}
			digest, err := snap.Digest(a.cfg.DigestBytes)
			if err != nil {
				return err
			}
			fmt.Printf("Documenting %s (%d files) with %s/%s\n", snap.Root, len(snap.Files), a.client.Name(), a.client.Model())

			jobs := make([]orchestrator.Job, 0, len(docSections)+1)
			jobs = append(jobs, orchestrator.Job{
				Name:         "overview",
				Foundational: true,
				Request: func(string) llm.CompletionRequest {
					return llm.CompletionRequest{
						Prompt:      analysis.OverviewPrompt(digest),
						Model:       a.client.Model(),
						MaxTokens:   a.cfg.MaxTokens,
						Temperature: a.cfg.Temperature,
					}
				},
			})
			for _, section := range docSections {
				section := section
				jobs = append(jobs, orchestrator.Job{
					Name: section,
					Request: func(overview string) llm.CompletionRequest {
						return llm.CompletionRequest{
							Prompt:      analysis.SectionPrompt(section, overview, digest),
							Model:       a.client.Model(),
							MaxTokens:   a.cfg.MaxTokens,
							Temperature: a.cfg.Temperature,
						}
					},
				})
			}

			if limit <= 0 {
				limit = a.cfg.Concurrency
			}
			result, err := a.orc.RunBatch(cmd.Context(), jobs, limit, printProgress)
			if err != nil {
				return err
			}

			if err := writeOutputs(outDir, result.Outcomes, ".md"); err != nil {
				return err
			}
			printSummary(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max concurrent jobs (default: config concurrency)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (anthropic, openai, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&outDir, "out", "docs", "output directory")
	return cmd
}
