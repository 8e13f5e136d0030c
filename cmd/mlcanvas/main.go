// Command mlcanvas compiles MLCanvas snapshot files into training
// scripts and serves the HTTP build API used by the canvas editor.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mi-Lis/MLCanvas/compiler"
	"github.com/Mi-Lis/MLCanvas/config"
	"github.com/Mi-Lis/MLCanvas/graph"
	"github.com/Mi-Lis/MLCanvas/log"
	"github.com/Mi-Lis/MLCanvas/server"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "mlcanvas",
		Short: "MLCanvas pipeline-to-script compiler",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.mlcanvas/config.yaml)")

	root.AddCommand(buildCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if def := config.DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func newParser(cfg *config.Config) *graph.Parser {
	if cfg.StrictSnapshots {
		return graph.NewStrictParser()
	}
	return graph.NewParser()
}

func buildCmd() *cobra.Command {
	var outDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "build <snapshot.json>...",
		Short: "Compile snapshot files into training scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			parser := newParser(cfg)

			docs := make([]*graph.Document, len(args))
			for i, path := range args {
				doc, err := parser.ParseFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				docs[i] = doc
			}

			results, err := compiler.BuildAll(docs, workers)
			if err != nil {
				return err
			}

			failed := 0
			for i, res := range results {
				name := compiler.ScriptFilename(docs[i].ProjectName)
				if !res.OK {
					failed++
					fmt.Fprint(cmd.ErrOrStderr(), compiler.ErrorScript(res.Errors))
					log.Errorf("%s: build failed with %d validation errors", args[i], len(res.Errors))
					continue
				}
				dir := outDir
				if dir == "" {
					dir = filepath.Dir(args[i])
				}
				out := filepath.Join(dir, name)
				if err := os.WriteFile(out, []byte(res.Source), 0644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				log.Infof("%s -> %s", args[i], out)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d snapshots failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "directory for generated scripts (default: next to each snapshot)")
	cmd.Flags().IntVar(&workers, "workers", 0, "build pool size (default: number of CPUs)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Check whether a snapshot can be compiled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, err := newParser(cfg).ParseFile(args[0])
			if err != nil {
				return err
			}
			res := compiler.Validate(doc.Graph())
			if res.OK {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, msg := range res.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return fmt.Errorf("snapshot failed validation")
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP build service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			opts := []server.Option{server.WithAllowedOrigins(cfg.AllowedOrigins)}
			if cfg.StrictSnapshots {
				opts = append(opts, server.WithStrictSnapshots())
			}
			srv := server.New(opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8787)")
	return cmd
}
