package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"repoctx/internal/config"
	"repoctx/internal/extractor"
	"repoctx/internal/pipeline"
	"repoctx/internal/tokenizer"
)

var (
	rootCmd = &cobra.Command{
		Use:           "repoctx",
		Short:         "Bundle a repository into a token-budgeted context document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "repoctx.yaml", "Path to an optional YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	f := generateCmd.Flags()
	f.IntP("max-tokens", "m", config.DefaultMaxTokens, "Token budget for the document")
	f.StringP("output", "o", config.DefaultOutputFile, "Output file")
	f.Bool("include-hidden", false, "Include dot-files and dot-directories")
	f.Bool("include-deps", false, "List manifest dependencies in the metadata section")
	f.Bool("respect-gitignore", false, "Skip paths matched by the root .gitignore")
	f.Bool("pin-tokenizer", false, "Record the tokenizer name in the document header")
	f.String("report", "", "Also write a JSON run report to this path")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tokensCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// applyFlags copies explicitly set flags over the loaded configuration, so
// file and environment values survive unless overridden on the command line.
func applyFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	if len(args) > 0 {
		cfg.RepoPath = args[0]
	}
	f := cmd.Flags()
	var err error
	if f.Changed("max-tokens") {
		if cfg.MaxTokens, err = f.GetInt("max-tokens"); err != nil {
			return err
		}
	}
	if f.Changed("output") {
		if cfg.OutputFile, err = f.GetString("output"); err != nil {
			return err
		}
	}
	bools := map[string]*bool{
		"include-hidden":    &cfg.IncludeHidden,
		"include-deps":      &cfg.IncludeDeps,
		"respect-gitignore": &cfg.RespectGitignore,
		"pin-tokenizer":     &cfg.PinTokenizer,
	}
	for name, dst := range bools {
		if !f.Changed(name) {
			continue
		}
		if *dst, err = f.GetBool(name); err != nil {
			return err
		}
	}
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Scan a repository and write its context document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, args, cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("📂 Scanning repository: %s\n", cfg.RepoPath)
		res, err := pipeline.Run(ctx, cfg, pipeline.Options{
			Logger:   newLogger(),
			Progress: os.Stdout,
		})
		if err != nil {
			return err
		}

		if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
			if err := res.Report.Save(reportPath); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}

		fmt.Println(summaryBox(res))
		return nil
	},
}

func summaryBox(res *pipeline.Result) string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("✨ Context generated"))
	lines = append(lines,
		fmt.Sprintf("Files:    %d (%s)", res.Scan.Structure.TotalFiles, humanize.Bytes(uint64(res.Scan.Structure.TotalSize))),
		fmt.Sprintf("Sections: %d of %d", len(res.Sections), res.Built),
		fmt.Sprintf("Tokens:   %s of %s", humanize.Comma(int64(res.Usage.Total)), humanize.Comma(int64(res.Usage.Budget))),
		fmt.Sprintf("Output:   %s", res.OutputPath),
	)
	if n := len(res.Sections); n > 0 && res.Sections[n-1].Truncated {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("Truncated: "+res.Sections[n-1].Title))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Print the declaration outline of one source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, err := extractor.NewExtractorForPath(args[0])
		if err != nil {
			return err
		}
		decls, err := ext.ExtractFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Print(decls.Summary())
		return nil
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>...",
	Short: "Count cl100k_base tokens in files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := tokenizer.New()
		if err != nil {
			return err
		}
		total := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			n := tok.Count(string(data))
			total += n
			fmt.Printf("%8s  %s\n", humanize.Comma(int64(n)), path)
		}
		if len(args) > 1 {
			fmt.Printf("%8s  total\n", humanize.Comma(int64(total)))
		}
		return nil
	},
}
