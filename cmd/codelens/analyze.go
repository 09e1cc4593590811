package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/codelens-ai/codelens/analysis"
	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/orchestrator"
	"github.com/codelens-ai/codelens/project"
	"github.com/codelens-ai/codelens/resilience"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		categories []string
		limit      int
		noCache    bool
		provider   string
		model      string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Run multi-category analysis over a codebase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			selected, err := selectCategories(categories)
			if err != nil {
				return err
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
			fmt.Printf("Analyzing %s (%d files) with %s/%s\n", snap.Root, len(snap.Files), a.client.Name(), a.client.Model())

			jobs := lo.Map(selected, func(cat analysis.Category, _ int) orchestrator.Job {
				return analysisJob(a, cat, digest)
			})

			if limit <= 0 {
				limit = a.cfg.Concurrency
			}
			result, err := a.orc.RunBatch(cmd.Context(), jobs, limit, printProgress)
			if err != nil {
				return err
			}

			if err := writeOutputs(outDir, result.Outcomes, ".json"); err != nil {
				return err
			}
			printSummary(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", nil, "categories to run (default: all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max concurrent jobs (default: config concurrency)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (anthropic, openai, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&outDir, "out", "codelens-out", "output directory")
	return cmd
}

func analysisJob(a *app, cat analysis.Category, digest string) orchestrator.Job {
	return orchestrator.Job{
		Name: string(cat),
		Request: func(string) llm.CompletionRequest {
			return llm.CompletionRequest{
				Prompt:      analysis.Prompt(cat, digest),
				Model:       a.client.Model(),
				MaxTokens:   a.cfg.MaxTokens,
				Temperature: a.cfg.Temperature,
			}
		},
		Schema: &llm.Schema{
			Name:        "analysis_report",
			Description: "category analysis report with scored findings",
		},
		Postprocess: decodeReport(cat),
	}
}

// decodeReport recovers a typed report from model output, normalizes it, and
// re-serializes it for the output writer.
func decodeReport(cat analysis.Category) func(content string) (string, error) {
	return func(content string) (string, error) {
		out := resilience.DecodeWith[analysis.Report](content, func(r *analysis.Report) {
			r.Category = cat
			r.Normalize()
		})
		if !out.OK {
			return "", fmt.Errorf("%w (raw payload: %q)", out.Err, out.Raw)
		}
		data, err := json.MarshalIndent(out.Data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func selectCategories(names []string) ([]analysis.Category, error) {
	if len(names) == 0 {
		return analysis.Categories, nil
	}
	cats := make([]analysis.Category, 0, len(names))
	for _, name := range names {
		cat := analysis.Category(strings.ToLower(strings.TrimSpace(name)))
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category %q (known: %v)", name, analysis.Categories)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

func printProgress(completed, total int, outcome orchestrator.JobOutcome) {
	marker := "done"
	switch outcome.Status {
	case orchestrator.StatusError:
		marker = "failed"
	case orchestrator.StatusSkipped:
		marker = "skipped"
	}
	cached := ""
	if outcome.FromCache {
		cached = " (cached)"
	}
	fmt.Printf("[%d/%d] %-12s %s%s\n", completed, total, outcome.Name, marker, cached)
}

func printSummary(result *orchestrator.BatchResult) {
	fmt.Printf("\n%-14s %-8s %10s %10s %10s\n", "JOB", "STATUS", "IN TOK", "OUT TOK", "COST")
	for _, o := range result.Outcomes {
		fmt.Printf("%-14s %-8s %10d %10d %9.4f$\n", o.Name, o.Status, o.InputTokens, o.OutputTokens, o.Cost)
		if o.Err != "" {
			fmt.Printf("    error: %s\n", o.Err)
		}
	}
	fmt.Printf("\nTotal: %d input tokens, %d output tokens, $%.4f in %s\n",
		result.InputTokens, result.OutputTokens, result.Cost, result.Duration.Round(timeRounding))
}

// writeOutputs writes each successful outcome to <dir>/<name><ext>.
func writeOutputs(dir string, outcomes []orchestrator.JobOutcome, ext string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, o := range outcomes {
		if o.Status != orchestrator.StatusSuccess {
			continue
		}
		path := filepath.Join(dir, o.Name+ext)
		if err := os.WriteFile(path, []byte(o.Output), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
