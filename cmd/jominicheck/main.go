// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package main implements the jominicheck CLI. This program loads a
// `.cwt` schema directory, parses a single data file against it, and
// prints the diagnostics the rule stack produces. It is intentionally
// thin — the real authoring surface (editor integration, watch mode,
// project-wide batch runs) is an external driver's job.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maloquacious/semver"
	"github.com/mdhender/jomini/internal/carrier"
	"github.com/mdhender/jomini/internal/cerrs"
	"github.com/mdhender/jomini/internal/config"
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/localisation"
	"github.com/mdhender/jomini/internal/schema"
	"github.com/mdhender/jomini/internal/stdlib"
	"github.com/mdhender/jomini/internal/typecheck"
	"github.com/spf13/cobra"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 1,
		Patch: 0,
		Build: semver.Commit(),
	}
	logger *slog.Logger
)

func main() {
	var schemaDir, dataDir, path, typeName, rootScope, unresolvedPolicy, coverage, configPath string
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("debug", false, "enable debug logging (same as --log-level=debug)")
		cmd.PersistentFlags().Bool("quiet", false, "only log errors (same as --log-level=error)")
		cmd.PersistentFlags().String("log-level", "error", "logging level (debug|info|warn|error))")
		cmd.PersistentFlags().Bool("log-source", false, "add file and line numbers to log messages")
		cmd.Flags().StringVar(&schemaDir, "schema", schemaDir, "directory of .cwt schema files")
		if err := cmd.MarkFlagRequired("schema"); err != nil {
			return err
		}
		cmd.Flags().StringVar(&path, "input", path, "data file to type-check")
		if err := cmd.MarkFlagRequired("input"); err != nil {
			return err
		}
		cmd.Flags().StringVar(&typeName, "type", typeName, "schema type name the input's root object matches")
		if err := cmd.MarkFlagRequired("type"); err != nil {
			return err
		}
		cmd.Flags().StringVar(&dataDir, "data", "", "project data root to scan for complex-enum membership (optional)")
		cmd.Flags().StringVar(&rootScope, "scope", "this", "in-game scope the root object starts in")
		cmd.Flags().StringVar(&configPath, "config", "", "JSON config file providing defaults for the flags below (optional)")
		cmd.Flags().StringVar(&unresolvedPolicy, "unresolved-reference-policy", "defer", "defer|error")
		cmd.Flags().StringVar(&coverage, "localisation-coverage", "any", "any|all")
		return nil
	}

	cmdRoot := &cobra.Command{
		Use:           "jominicheck",
		Short:         "jomini schema type-checker",
		Long:          `Type-check a Jomini-grammar data file against a .cwt schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Root().PersistentFlags()
			logLevel, err := flags.GetString("log-level")
			if err != nil {
				return err
			}
			logSource, err := flags.GetBool("log-source")
			if err != nil {
				return err
			}
			debug, err := flags.GetBool("debug")
			if err != nil {
				return err
			}
			quiet, err := flags.GetBool("quiet")
			if err != nil {
				return err
			}
			if debug && quiet {
				return fmt.Errorf("--debug and --quiet are mutually exclusive")
			}
			var lvl slog.Level
			switch {
			case debug:
				lvl = slog.LevelDebug
			case quiet:
				lvl = slog.LevelError
			default:
				switch strings.ToLower(logLevel) {
				case "debug":
					lvl = slog.LevelDebug
				case "info":
					lvl = slog.LevelInfo
				case "warn", "warning":
					lvl = slog.LevelWarn
				case "error":
					lvl = slog.LevelError
				default:
					return fmt.Errorf("log-level: unknown value %q", logLevel)
				}
			}
			handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     lvl,
				AddSource: logSource || lvl == slog.LevelDebug,
			})
			logger = slog.New(handler)
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaDir, err := filepath.Abs(schemaDir)
			if err != nil {
				logger.Error("jominicheck: invalid schema path", "error", err)
				return err
			}
			if ok, err := stdlib.IsDirExists(schemaDir); err != nil {
				return cerrs.ErrInvalidSchemaPath
			} else if !ok {
				return cerrs.ErrNotADirectory
			}

			path, err = filepath.Abs(path)
			if err != nil {
				logger.Error("jominicheck: invalid input path", "error", err)
				return err
			}
			if ok, err := stdlib.IsFileExists(path); err != nil {
				return cerrs.ErrInvalidInputPath
			} else if !ok {
				return cerrs.ErrNotAFile
			}

			cfg := config.Default()
			if configPath != "" {
				configPath, err = filepath.Abs(configPath)
				if err != nil {
					logger.Error("jominicheck: invalid config path", "error", err)
					return err
				}
				cfg, err = config.Load(configPath)
				if err != nil {
					logger.Error("jominicheck: config", "error", err)
					return err
				}
				// explicit flags win over the config file's defaults
				if !cmd.Flags().Changed("unresolved-reference-policy") {
					unresolvedPolicy = cfg.UnresolvedReferencePolicy
				}
				if !cmd.Flags().Changed("localisation-coverage") {
					coverage = cfg.LocalisationCoverage
				}
			}

			var policy typecheck.UnresolvedReferencePolicy
			switch strings.ToLower(unresolvedPolicy) {
			case "defer":
				policy = typecheck.PolicyDefer
			case "error":
				policy = typecheck.PolicyError
			default:
				return fmt.Errorf("unresolved-reference-policy: unknown value %q", unresolvedPolicy)
			}
			var cov localisation.Coverage
			switch strings.ToLower(coverage) {
			case "any":
				cov = localisation.CoverageAny
			case "all":
				cov = localisation.CoverageAll
			default:
				return fmt.Errorf("localisation-coverage: unknown value %q", coverage)
			}

			schemaFiles, err := readCWTFiles(schemaDir)
			if err != nil {
				logger.Error("jominicheck: schema", "error", err)
				return err
			}
			if len(schemaFiles) == 0 {
				return cerrs.ErrNoSchemaFiles
			}
			graph, schemaDiags := schema.Build(schemaFiles)
			if hasErrors(schemaDiags) {
				printDiagnostics(cmd, schemaDiags)
				return fmt.Errorf("schema failed to build: %d diagnostic(s)", len(schemaDiags))
			}
			if _, ok := graph.Types[typeName]; !ok {
				return cerrs.ErrUnknownType
			}

			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("jominicheck: input", "error", err)
				return err
			}

			c := carrier.New(data, cfg.ToParserOptions(), cfg.ToLexerOptions())
			parseDiags := c.Diagnostics()
			idx := c.Facts()
			root, ok := idx.Lookup(nil)
			if !ok {
				return cerrs.ErrRootObjectNotFound
			}

			eng := typecheck.New(graph)
			eng.Logger = logger
			eng.UnresolvedReferencePolicy = policy
			eng.Coverage = cov

			if dataDir != "" {
				dataDir, err = filepath.Abs(dataDir)
				if err != nil {
					logger.Error("jominicheck: invalid data path", "error", err)
					return err
				}
				fs := dirFS{root: dataDir}
				eng.ComplexEnumMembers = make(map[string]map[string]bool, len(graph.ComplexEnums))
				for name, ce := range graph.ComplexEnums {
					members, err := schema.ResolveComplexEnum(ce, fs)
					if err != nil {
						logger.Error("jominicheck: complex enum", "name", name, "error", err)
						return err
					}
					eng.ComplexEnumMembers[name] = members
				}
			}

			diags := eng.Check(root, idx, typeName, rootScope)

			all := append(append([]diag.Diagnostic(nil), parseDiags...), diags...)
			printDiagnostics(cmd, all)
			if hasErrors(all) {
				return fmt.Errorf("%d diagnostic(s)", len(all))
			}
			return nil
		},
	}
	if err := addFlags(cmdRoot); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	cmdRoot.AddCommand(cmdVersion())

	if err := cmdRoot.Execute(); err != nil {
		logger.Error("jominicheck", "error", err)
		os.Exit(1)
	}
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(version.String())
				return nil
			}
			fmt.Println(version.Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		logger.Error("version", "error", err)
		os.Exit(1)
	}
	return cmd
}

// dirFS is the real schema.FileSystem implementation adapters.go
// forward-references: an os.DirFS-shaped walk/read pair rooted at a
// project's data directory, used to resolve complex-enum membership by
// scanning the project's own files (spec.md §4.9).
type dirFS struct{ root string }

func (d dirFS) Walk(_ string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.root, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func (d dirFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, filepath.FromSlash(path)))
}

// readCWTFiles walks dir for `.cwt` files, keyed by path relative to
// dir (forward-slash separated), the shape schema.Build expects.
func readCWTFiles(dir string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(p)) != ".cwt" {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = data
		return nil
	})
	return out, err
}

func hasErrors(ds []diag.Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

func printDiagnostics(cmd *cobra.Command, ds []diag.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
	}
}
