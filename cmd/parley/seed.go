package main

import (
	"os"

	"github.com/go-go-golems/parley/pkg/config"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Scenarios []*scenario.Scenario `yaml:"scenarios"`
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <scenarios.yaml>",
		Short: "Load scenario definitions from a YAML file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if settings.Database.Driver != "sqlite" {
				return errors.New("seed requires the sqlite database driver")
			}

			st, err := openStores(settings)
			if err != nil {
				return err
			}

			b, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "could not read %s", args[0])
			}
			var f seedFile
			if err := yaml.Unmarshal(b, &f); err != nil {
				return errors.Wrap(err, "could not parse scenario file")
			}

			ctx := cmd.Context()
			for _, sc := range f.Scenarios {
				if err := st.scenarios.Put(ctx, sc); err != nil {
					return err
				}
				log.Info().Str("id", sc.ID).Str("title", sc.Title).Msg("seeded scenario")
			}
			return nil
		},
	}
}
