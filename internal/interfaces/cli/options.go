package cli

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every option's environment variable.
const EnvPrefix = "CTREE_"

// Options holds the settings shared by all commands. Values come from
// defaults, then CTREE_* variables, then explicitly set flags.
type Options struct {
	Path    string `env:"PATH"`
	Env     string `env:"ENV"`
	Format  string `env:"FORMAT"`
	Branch  string `env:"BRANCH"`
	Verbose bool   `env:"VERBOSE"`
}

// DefaultOptions returns the options used when nothing else is set
func DefaultOptions() Options {
	return Options{Path: ".", Format: "json"}
}

func parseEnv(opts *Options) error {
	if err := env.ParseWithOptions(opts, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error getting env options: %w", err)
	}
	return nil
}

// flagOptions collects only the flags the user actually set, so defaults
// registered on the flag set never mask environment values.
func flagOptions(flags *pflag.FlagSet) Options {
	var opts Options
	if flags.Changed("path") {
		opts.Path, _ = flags.GetString("path")
	}
	if flags.Changed("env") {
		opts.Env, _ = flags.GetString("env")
	}
	if flags.Changed("branch") {
		opts.Branch, _ = flags.GetString("branch")
	}
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	return opts
}

// resolveOptions merges defaults, environment and flags in that order
func resolveOptions(flags *pflag.FlagSet) (Options, error) {
	opts := DefaultOptions()

	var fromEnv Options
	if err := parseEnv(&fromEnv); err != nil {
		return opts, err
	}

	for _, src := range []Options{fromEnv, flagOptions(flags)} {
		if err := mergo.Merge(&opts, src, mergo.WithOverride); err != nil {
			return opts, fmt.Errorf("error merging options: %w", err)
		}
	}

	// Merging skips zero values, so an explicit --verbose=false is applied here.
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	return opts, nil
}
