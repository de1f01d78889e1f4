// Copyright © 2019 NAME HERE <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd is the gitrewrite CLI front-end: cobra-based flag parsing and
// wiring of the rewrite.Engine, grounded on the teacher's cmd/root.go
// (cobra.Command + spf13/viper flag binding + pkgs/logger global, scoped
// down from a multi-command blockchain client to this tool's single job).
package cmd

import (
	"os"

	"github.com/kkyr/gitrewrite/config"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/kkyr/gitrewrite/pkgs/logger"
	"github.com/kkyr/gitrewrite/replace"
	"github.com/kkyr/gitrewrite/rewrite"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// log is populated by PersistentPreRunE, the way the teacher's cmd/root.go
// resolves its package-level log from cfg.G().Log.
var log logger.Logger

// cfg is the application config, populated by PersistentPreRunE the way the
// teacher's PersistentPreRun populates its package-level cfg.
var cfg *config.AppConfig

var v = viper.New()

var (
	pattern        string
	replacement    string
	renameNames    bool
	rewriteContent bool
	useBolt        bool
	boltPath       string
)

// Execute runs the root command. Exit code 1 on any usage or engine
// failure, 0 on success (spec.md §6/§7) - the same contract the teacher's
// cmd.Execute gives its own rootCmd.Execute.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd represents the base command. gitrewrite has exactly one job, so
// unlike the teacher's multi-command rootCmd, all of the work happens
// directly in RunE rather than in a dispatched subcommand.
var rootCmd = &cobra.Command{
	Use:   "gitrewrite -d <path> -p <pattern> -r <replacement> [-f] [-c]",
	Short: "Rewrite a git repository's history by substituting a pattern in names and messages",
	Long: `gitrewrite rewrites the history of a git repository: every commit that
transitively references a tree entry name or commit message matching the
given regular-expression pattern is re-created with the substitution
applied, and every local branch reference is re-anchored onto the new
history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Configure(v)
		log = cfg.G().Log
		return nil
	},
	RunE: runRewrite,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("dir", "d", ".", "Path to the repository to rewrite")
	flags.StringVarP(&pattern, "pattern", "p", "", "Regular-expression pattern to match (required)")
	flags.StringVarP(&replacement, "replacement", "r", "", "Replacement text; may use $1/${name} backreferences (required)")
	flags.BoolVarP(&renameNames, "rename", "f", false, "Rewrite tree entry (file/directory) names")
	flags.BoolVarP(&rewriteContent, "content", "c", false, "Rewrite blob content (not yet implemented)")
	flags.StringP("output", "o", "", "Write the rewritten history into a fresh repository at this path instead of rewriting in place")
	flags.BoolVar(&useBolt, "on-disk-graph", false, "Back the traversal graph with an on-disk bbolt database instead of in-memory maps")
	flags.StringVar(&boltPath, "graph-db", "", "Path to the bbolt database file (used with --on-disk-graph; defaults under the data directory)")

	persistent := rootCmd.PersistentFlags()
	persistent.String("log-level", "info", "Log level: debug, info, warn or error")
	persistent.String("log-format", "text", "Log format: text or json")
	persistent.String("git-bin", "/usr/bin/git", "Path to the git executable (stored in the config only; the engine never shells out to git)")

	_ = rootCmd.MarkFlagRequired("pattern")
	_ = rootCmd.MarkFlagRequired("replacement")

	_ = v.BindPFlag("repo", flags.Lookup("dir"))
	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("git-bin", persistent.Lookup("git-bin"))
	_ = v.BindPFlag("log-level", persistent.Lookup("log-level"))
	_ = v.BindPFlag("log-format", persistent.Lookup("log-format"))
}

// runRewrite wires the CLI's parsed flags into a rewrite.Engine and runs it
// to completion, the way the teacher's leaf commands build a collaborator
// from cfg and call its one public entry point.
func runRewrite(cmd *cobra.Command, args []string) error {
	if rewriteContent {
		return rewrite.ErrContentRewriteUnsupported
	}

	repoPath := cfg.RepoPath
	if repoPath == "" {
		repoPath = "."
	}

	source, err := gitstore.Open(repoPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open repository at %q", repoPath)
	}

	var dest gitstore.ObjectStore
	if cfg.DestinationPath != "" {
		if err := config.EnsureDestination(cfg.DestinationPath); err != nil {
			return err
		}
		store, err := gitstore.Init(cfg.DestinationPath, false)
		if err != nil {
			return errors.Wrapf(err, "failed to initialize destination repository at %q", cfg.DestinationPath)
		}
		dest = store
	}

	rep, err := replace.New(pattern, replacement)
	if err != nil {
		return errors.Wrap(err, "invalid pattern")
	}

	var graph rewrite.GraphStore
	if useBolt {
		path := boltPath
		if path == "" {
			path = config.DefaultDataDir + "/graph.bolt"
		}
		store, err := rewrite.NewBoltGraphStore(path)
		if err != nil {
			return errors.Wrapf(err, "failed to open graph database at %q", path)
		}
		defer store.Close()
		graph = store
	}

	opts := rewrite.Options{
		RenameNames:     renameNames,
		RewriteMessages: true,
		Destination:     dest,
		Graph:           graph,
	}
	if entry, ok := logger.Entry(log); ok {
		opts.Log = entry
	}

	engine := rewrite.New(source, rep, opts)

	if err := engine.Run(); err != nil {
		log.Error("rewrite failed", "error", err.Error())
		return err
	}

	log.Info("rewrite complete", "repo", repoPath)
	return nil
}
