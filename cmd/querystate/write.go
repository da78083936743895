package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/querystate/internal/config"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/provider"
	"github.com/vango-dev/querystate/pkg/urlstate"
)

func writeCmd() *cobra.Command {
	var (
		flags  fieldFlags
		from   string
		values []string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Encode state into a URL",
		Long: `Merge state into the query string of a location and print the new path.

Parameters that are not set keep their value and position. Setting a
field to an empty value removes it. Repeat --set with the same field
to write a list. Fields without a codec are written unchanged.

Examples:
  querystate write --location '/users?sort=asc' --set page=2 --schema page=number
  querystate write --location '/search?q=go&tag=a' --set tag=x --set tag=y`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			assignments, err := parseAssignments(values)
			if err != nil {
				return err
			}

			for field := range assignments {
				if _, ok := cfg.Schema[field]; !ok {
					if cfg.Schema == nil {
						cfg.Schema = map[string]string{}
					}
					cfg.Schema[field] = "identity"
				}
			}

			if !cmd.Flags().Changed("location") {
				from = cfg.InitialLocation.Location().Path()
			}

			path, err := writeState(cfg, from, stateFromAssignments(assignments))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&from, "location", "l", "", "Current location to update (default: initialLocation from the configuration)")
	cmd.Flags().StringArrayVar(&values, "set", nil, "Field value as field=value; repeatable")

	return cmd
}

// writeState applies state to the location from and returns the pushed path.
func writeState(cfg *config.Config, from string, state urlstate.State) (string, error) {
	pcfg, err := providerConfig(cfg)
	if err != nil {
		return "", err
	}

	h := history.NewMemory(location.Split(from))
	err = provider.New(nil).With(h, pcfg, func(p *provider.Provider) error {
		return p.Use(provider.UseOptions{}).SetState(state, nil)
	})
	if err != nil {
		return "", err
	}
	return h.Location().Path(), nil
}

func stateFromAssignments(assignments map[string][]string) urlstate.State {
	state := make(urlstate.State, len(assignments))
	for field, vals := range assignments {
		if len(vals) == 1 {
			state[field] = vals[0]
			continue
		}
		state[field] = vals
	}
	return state
}
