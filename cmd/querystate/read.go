package main

import (
	"encoding/json"
	"math"

	"github.com/spf13/cobra"

	"github.com/vango-dev/querystate/internal/config"
	"github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/provider"
	"github.com/vango-dev/querystate/pkg/urlparam"
	"github.com/vango-dev/querystate/pkg/urlstate"
)

func readCmd() *cobra.Command {
	var (
		flags  fieldFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "read [URL]",
		Short: "Decode a URL into typed state",
		Long: `Decode the query string of URL into typed state and print it as JSON.

URL defaults to initialLocation from the configuration. Fields without
a codec in the schema are left out. Empty values (empty strings, false,
NaN) are dropped. Numbers that are not finite print as null.

Examples:
  querystate read '/users?name=ann&age=31' --schema name=string --schema age=number
  querystate read '/users?name=ann&age=31' --config querystate.yaml --exclude age
  querystate read '/search?q=100%' --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			loc := cfg.InitialLocation.Location()
			if len(args) == 1 {
				loc = location.Split(args[0])
			}
			if strict {
				if _, err := urlparam.ParseWith(loc.Query(), urlparam.Options{StrictDecode: true}); err != nil {
					return errors.New("Q403").WithDetail(loc.Search).Wrap(err)
				}
			}

			state, err := readState(cfg, loc)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(printable(state)); err != nil {
				return errors.New("Q402").
					WithDetail("state cannot be printed as JSON").
					Wrap(err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject malformed percent escapes instead of keeping them verbatim")
	return cmd
}

// readState decodes loc through a provider attached to an in-memory history
// positioned at loc.
func readState(cfg *config.Config, loc location.Location) (urlstate.State, error) {
	pcfg, err := providerConfig(cfg)
	if err != nil {
		return nil, err
	}

	h := history.NewMemory(loc)
	var state urlstate.State
	err = provider.New(cfg.InitialState).With(h, pcfg, func(p *provider.Provider) error {
		state = p.Use(provider.UseOptions{}).State
		return nil
	})
	return state, err
}

// printable replaces NaN and infinities, which JSON cannot represent, with
// nil.
func printable(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case []float64:
		out := make([]any, len(val))
		for i, f := range val {
			out[i] = printable(f)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = printable(item)
		}
		return out
	case urlstate.State:
		return printable(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = printable(item)
		}
		return out
	}
	return v
}
