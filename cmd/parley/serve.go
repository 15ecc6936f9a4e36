package main

import (
	"github.com/go-go-golems/parley/pkg/api"
	"github.com/go-go-golems/parley/pkg/chat"
	"github.com/go-go-golems/parley/pkg/config"
	"github.com/go-go-golems/parley/pkg/dialogue"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/expressions"
	"github.com/go-go-golems/parley/pkg/recommend"
	"github.com/go-go-golems/parley/pkg/sharing"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type stores struct {
	transcripts store.TranscriptStore
	scenarios   store.ScenarioStore
	expressions store.ExpressionStore
	vocab       store.VocabStore
	shared      store.SharedStore
}

func openStores(settings *config.Settings) (*stores, error) {
	switch settings.Database.Driver {
	case "", "memory":
		log.Warn().Msg("using in-memory stores, data will not survive a restart")
		return &stores{
			transcripts: store.NewMemoryTranscripts(),
			scenarios:   store.NewMemoryScenarios(),
			expressions: store.NewMemoryExpressions(),
			vocab:       store.NewMemoryVocab(),
			shared:      store.NewMemoryShared(),
		}, nil
	case "sqlite":
		db, err := store.OpenSQLite(settings.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			transcripts: store.NewSQLiteTranscripts(db),
			scenarios:   store.NewSQLiteScenarios(db),
			expressions: store.NewSQLiteExpressions(db),
			vocab:       store.NewSQLiteVocab(db),
			shared:      store.NewSQLiteShared(db),
		}, nil
	default:
		return nil, errors.Errorf("unknown database driver %q", settings.Database.Driver)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dialogue HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if settings.OpenAI.APIKey == "" {
				return errors.New("no OpenAI API key configured (set OPENAI_API_KEY)")
			}

			st, err := openStores(settings)
			if err != nil {
				return err
			}

			engine := chat.NewOpenAIEngine(
				settings.OpenAI.APIKey,
				settings.OpenAI.BaseURL,
				chat.WithModel(settings.OpenAI.Model),
			)
			translator := chat.NewOpenAITranslator(engine)

			publisher, _ := events.NewGoChannelManager("dialogue")
			languages := []string{settings.Language.Source, settings.Language.Target}

			dialogueSvc := dialogue.NewService(
				st.transcripts, st.scenarios, engine, translator,
				dialogue.WithPublisher(publisher),
				dialogue.WithLanguages(languages[0], languages[1]),
			)
			expressionsSvc := expressions.NewService(
				st.transcripts, st.expressions,
				expressions.WithPublisher(publisher),
			)
			sharingSvc := sharing.NewService(
				st.transcripts, st.shared,
				sharing.WithPublisher(publisher),
			)
			recommendSvc := recommend.NewService(
				st.scenarios, st.expressions, st.vocab, engine, translator,
				recommend.WithLanguages(languages[0], languages[1]),
			)

			srv := api.NewServer(
				settings.Listen,
				dialogueSvc, expressionsSvc, sharingSvc, recommendSvc,
				st.scenarios,
			)
			return srv.Start()
		},
	}
}
