package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/querystate/internal/config"
	"github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/provider"
)

// fieldFlags are the selector and schema flags shared by read and write.
type fieldFlags struct {
	configPath string
	schema     []string
	includes   []string
	excludes   []string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Configuration file (default: querystate.json or querystate.yaml in the working directory)")
	cmd.Flags().StringArrayVar(&f.schema, "schema", nil, "Field codec as field=kind (identity, boolean, string, number); repeatable")
	cmd.Flags().StringSliceVar(&f.includes, "include", nil, "Only synchronize these fields")
	cmd.Flags().StringSliceVar(&f.excludes, "exclude", nil, "Never synchronize these fields")
}

// resolve loads the configuration and applies flag overrides. A missing
// default configuration file is not an error.
func (f *fieldFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	return f.apply(cmd, loaded)
}

// apply returns a copy of loaded with the flag overrides applied. loaded is
// not modified.
func (f *fieldFlags) apply(cmd *cobra.Command, loaded *config.Config) (*config.Config, error) {
	cfg := loaded.Clone()

	kinds, err := parseAssignments(f.schema)
	if err != nil {
		return nil, err
	}
	if len(kinds) > 0 && cfg.Schema == nil {
		cfg.Schema = map[string]string{}
	}
	for field, kind := range kinds {
		cfg.Schema[field] = kind[len(kind)-1]
	}

	if cmd.Flags().Changed("include") {
		cfg.Includes = nonNil(f.includes)
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Excludes = nonNil(f.excludes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if errors.HasCode(err, "Q101") {
		return config.New(), nil
	}
	return cfg, err
}

// providerConfig converts cfg into provider settings.
func providerConfig(cfg *config.Config) (provider.Config, error) {
	sch, err := cfg.BuildSchema()
	if err != nil {
		return provider.Config{}, err
	}
	return provider.Config{
		InitialOptions: cfg.InitialOptions,
		Schema:         sch,
		Includes:       cfg.Includes,
		Excludes:       cfg.Excludes,
		Logger:         newLogger(),
	}, nil
}

// parseAssignments parses repeated key=value flags. Repeating a key
// collects its values in order.
func parseAssignments(items []string) (map[string][]string, error) {
	out := make(map[string][]string, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, errors.New("Q401").
				WithDetail("expected key=value, got " + item)
		}
		out[key] = append(out[key], value)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
