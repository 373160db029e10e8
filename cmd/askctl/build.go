package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valkyrie8787/llm-dictionary/internal/app"
	"github.com/valkyrie8787/llm-dictionary/internal/config"
	"github.com/valkyrie8787/llm-dictionary/internal/dictbuild"
	"github.com/valkyrie8787/llm-dictionary/internal/logger"
)

var newGenerator = func(cfg config.Config) (dictbuild.Generator, error) {
	client, err := app.NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newDictBuildCmd() *cobra.Command {
	defaults := dictbuild.DefaultOptions()
	opts := defaults
	var out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate a dictionary with the configured LLM",
		Long: `Generate an English-to-target dictionary with the LLM configured for the
assistant (OPENAI_API_KEY, OPENAI_BASE_URL, LLM_MODEL). Accepted entries are
validated and written to DICTIONARY_DIR unless --out is given. Interrupted
builds continue with --resume.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			opts.Model = cfg.LLMModel
			opts.OutDir = out
			if opts.OutDir == "" {
				opts.OutDir = cfg.DictionaryDir
			}
			b, err := dictbuild.New(gen, logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel), opts)
			if err != nil {
				return err
			}

			printStatus("Target", "%s (%s)", dictbuild.Languages[opts.TargetLanguage], opts.TargetLanguage)
			printStatus("Progress", "%s", b.ProgressPath())
			path, err := b.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				printWarning("Interrupted; rerun with --resume to continue")
				return err
			}
			if err != nil {
				return err
			}
			printSuccess("Dictionary written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.TargetLanguage, "target-lang", defaults.TargetLanguage, "target language code (ko, es, fr, de, ja, hr, zh, ru)")
	f.StringVar(&opts.Mode, "mode", defaults.Mode, "prefix mode")
	f.IntVar(&opts.Batch, "batch", defaults.Batch, "accepted words wanted per prefix")
	f.IntVar(&opts.MinLength, "min-len", defaults.MinLength, "shortest headword")
	f.IntVar(&opts.MaxLength, "max-len", defaults.MaxLength, "longest headword")
	f.Float64Var(&opts.Overgen, "overgen", defaults.Overgen, "candidates requested per wanted word")
	f.Float64SliceVar(&opts.Temperatures, "temps", defaults.Temperatures, "review temperatures, one review each")
	f.Float64Var(&opts.ScoreCut, "score-cut", defaults.ScoreCut, "minimum consensus score")
	f.IntVar(&opts.RarityCut, "rarity-cut", defaults.RarityCut, "reject words at or above this rarity")
	f.IntVar(&opts.SaveEvery, "save-every", defaults.SaveEvery, "prefixes between progress saves")
	f.IntVar(&opts.MaxPrefixes, "max-prefixes", 0, "stop after this many prefixes (0 for all)")
	f.StringVar(&opts.ProgressPath, "progress", "", "progress file (default dict_progress_<lang>.json)")
	f.BoolVar(&opts.Resume, "resume", false, "continue from the progress file")
	f.StringVar(&out, "out", "", "output directory (default DICTIONARY_DIR)")
	return cmd
}
