package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Stormmysea/stock-website/internal/config"
	"github.com/Stormmysea/stock-website/internal/ohlc"
	"github.com/Stormmysea/stock-website/internal/render"
	"github.com/Stormmysea/stock-website/internal/scheduler"
	"github.com/Stormmysea/stock-website/internal/server"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:          "stockdash",
		Short:        "Stock market dashboard",
		Long:         "stockdash collects quotes, candles and headlines for a watchlist and serves them as a terminal or web dashboard.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				cfgPath = "configs/config.yaml"
				if v := os.Getenv("CONFIG_PATH"); v != "" {
					cfgPath = v
				}
			}
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "configuration file path (default configs/config.yaml, or $CONFIG_PATH)")

	getCfg := func() *config.Config { return cfg }
	rootCmd.AddCommand(newServeCmd(getCfg))
	rootCmd.AddCommand(newShowCmd(getCfg))
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTermCmd(getCfg))
	return rootCmd
}

func newServeCmd(getCfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh on a schedule and serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(getCfg())
		},
	}
}

func runServe(cfg *config.Config) error {
	log.Println("[INFO] stockdash starting...")
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a.service)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}

	srv := server.New(cfg.Server.Listen, a.holder, a.console, a.index, sched.RunNow)

	// Initial load runs in the background; the server answers 503 until it lands.
	go func() {
		if err := sched.RunNow(ctx); err != nil {
			log.Printf("[ERROR] initial refresh: %v", err)
		}
	}()
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Println("[INFO] stockdash is running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] stockdash stopped")
	return nil
}

func newShowCmd(getCfg func() *config.Config) *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Refresh once and print the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(getCfg(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.service.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if asHTML {
				return render.HTML(cmd.OutOrStdout(), st)
			}
			return render.Terminal(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "write the HTML page instead of the terminal view")
	return cmd
}

func newParseCmd() *cobra.Command {
	var showReport bool
	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse an OHLC aggregate table and print the records as JSON",
		Long: `Parse a comma-separated aggregate table with the columns
ticker,volume,open,close,high,low,window_start[,transactions]
read from FILE, from stdin when FILE is "-", or the built-in sample when omitted.`,
		Args: cobra.MaximumNArgs(1),
		// No configuration needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTable(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			records, rep := ohlc.ParseReport(text)
			if showReport {
				fmt.Fprintf(cmd.ErrOrStderr(), "header %v (matches: %v)\nrows %d, parsed %d, dropped %d, defaulted fields %d, clock fallbacks %d\n",
					rep.Header, rep.HeaderMatches, rep.Rows, rep.Parsed, rep.Dropped, rep.DefaultedFields, rep.ClockFallbacks)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
	cmd.Flags().BoolVar(&showReport, "report", false, "print parse diagnostics to stderr")
	return cmd
}

func readTable(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 {
		return ohlc.SampleCSV, nil
	}
	if args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read table: %w", err)
	}
	return string(data), nil
}

func newTermCmd(getCfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Interactive command terminal over a fresh dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(getCfg(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.service.Refresh(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, `Ready for commands... type "help", "refresh" or "exit"`)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(input) {
				case "exit", "quit":
					return nil
				case "refresh":
					st, err := a.service.Refresh(cmd.Context())
					if err != nil {
						return err
					}
					if err := render.Terminal(out, st); err != nil {
						return err
					}
					continue
				}
				if err := render.TerminalLines(out, a.console.Handle(input)); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}
