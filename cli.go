package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bodul/crossgrow/crossword"
)

type ctxKey int

const loggerKey ctxKey = 0

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default when none is
// attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "crossgrow",
		Short:        "crossgrow builds crosswords on a grid that grows as words are placed",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newGenerateCmd())
	return root
}

// wordSource picks the word source from the configuration: Gemini when a GCP
// project is set, then a word list file, then the embedded list.
func wordSource(ctx context.Context, cfg Config, logger *log.Logger) (SourceFunc, error) {
	if cfg.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.Gemini())
		if err != nil {
			return nil, err
		}
		logger.Info("using Gemini word source", "project", cfg.ProjectID, "model", gemini.modelName)
		return gemini.SourceFunc(), nil
	}

	if cfg.WordList != "" {
		words, err := LoadWordList(cfg.WordList)
		if err != nil {
			return nil, err
		}
		logger.Info("using word list", "path", cfg.WordList, "words", len(words))
		return ListSourceFunc(words), nil
	}

	words, err := ParseWordList(defaultWordList)
	if err != nil {
		return nil, err
	}
	logger.Debug("using embedded word list", "words", len(words))
	return ListSourceFunc(words), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the crossword HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			source, err := wordSource(ctx, cfg, logger)
			if err != nil {
				return err
			}

			srv := NewServer(NewStore(), source, cfg.GenerateOptions(), logger)
			defer srv.Close()
			httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv}

			errc := make(chan error, 1)
			go func() {
				logger.Info("server started", "addr", "http://localhost:"+cfg.Port)
				errc <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			srv.Wait()
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		words    int
		clue     bool
		seed     uint64
		wordList string
		attempts int
		clueTry  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a crossword and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			opts := cfg.GenerateOptions()
			flags := cmd.Flags()
			if flags.Changed("words") {
				opts.Words = words
			}
			if flags.Changed("clue") {
				opts.Clue = clue
			}
			if flags.Changed("seed") {
				opts.Seed = seed
			}
			if flags.Changed("max-attempts") {
				opts.MaxAttempts = attempts
			}
			if flags.Changed("clue-attempts") {
				opts.ClueAttempts = clueTry
			}
			if flags.Changed("wordlist") {
				cfg.WordList = wordList
				cfg.ProjectID = ""
			}

			source, err := wordSource(ctx, cfg, logger)
			if err != nil {
				return err
			}

			cw, err := Generate(ctx, source, opts, logger, func(evt Event) {
				logger.Debug(evt.Type, "word", evt.Word, "words", evt.Words, "letters", evt.Letters)
			})
			if err != nil {
				return err
			}
			return printCrossword(cmd.OutOrStdout(), cw)
		},
	}

	cmd.Flags().IntVarP(&words, "words", "n", 10, "number of words to place")
	cmd.Flags().BoolVar(&clue, "clue", true, "overlay a clue word")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&wordList, "wordlist", "", "TOML word list to draw from")
	cmd.Flags().IntVar(&attempts, "max-attempts", 500, "maximum number of words to pull (0 for no limit)")
	cmd.Flags().IntVar(&clueTry, "clue-attempts", defaultClueAttempts, "maximum number of clue words to try")
	return cmd
}

// printCrossword writes the grid followed by the numbered meanings and the
// clue, if any.
func printCrossword(w io.Writer, cw *crossword.Crossword) error {
	if err := cw.Render(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	for i, d := range cw.Descriptions() {
		fmt.Fprintf(w, "%2d. %s\n", i+1, d)
	}
	if def, ok := cw.ClueDefinition(); ok {
		word, _ := cw.ClueWord()
		fmt.Fprintf(w, "\nClue (%d letters): %s\n", len([]rune(word)), def)
	}
	_, err := fmt.Fprintf(w, "\n%d words, %d letters, built in %s\n",
		cw.Words(), cw.Letters(), cw.Elapsed().Round(time.Microsecond))
	return err
}
