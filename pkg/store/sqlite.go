package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SQLite-backed implementations of the store ports. Entry sequences are
// serialized as JSON text columns, mirroring the record-store contract of a
// whole-document overwrite per save.

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	user_id TEXT NOT NULL,
	scenario_id TEXT NOT NULL,
	entries TEXT NOT NULL,
	goal_met INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, scenario_id)
);
CREATE TABLE IF NOT EXISTS scenarios (
	id TEXT PRIMARY KEY,
	author_id TEXT NOT NULL,
	title TEXT NOT NULL,
	settings TEXT NOT NULL,
	ai_setting TEXT NOT NULL,
	mission TEXT NOT NULL,
	starting_message TEXT NOT NULL,
	img_source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS expressions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	scenario_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS vocab (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	scenario_id TEXT NOT NULL,
	content TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS shared_conversations (
	id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	nickname TEXT NOT NULL,
	entries TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// OpenSQLite opens (and migrates) a SQLite database at the given DSN.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open sqlite database")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "could not apply schema")
	}
	log.Debug().Str("dsn", dsn).Msg("sqlite store ready")
	return db, nil
}

type SQLiteTranscripts struct {
	db *sqlx.DB
}

func NewSQLiteTranscripts(db *sqlx.DB) *SQLiteTranscripts {
	return &SQLiteTranscripts{db: db}
}

var _ TranscriptStore = (*SQLiteTranscripts)(nil)

type transcriptRow struct {
	UserID     string    `db:"user_id"`
	ScenarioID string    `db:"scenario_id"`
	Entries    string    `db:"entries"`
	GoalMet    bool      `db:"goal_met"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (s *SQLiteTranscripts) Find(ctx context.Context, userID, scenarioID string) (*conversation.Transcript, error) {
	var row transcriptRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, scenario_id, entries, goal_met, created_at, updated_at
		 FROM transcripts WHERE user_id = ? AND scenario_id = ?`, userID, scenarioID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not load transcript")
	}
	t := &conversation.Transcript{
		UserID:     row.UserID,
		ScenarioID: row.ScenarioID,
		GoalMet:    row.GoalMet,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Entries), &t.Entries); err != nil {
		return nil, errors.Wrap(err, "could not decode transcript entries")
	}
	return t, nil
}

func (s *SQLiteTranscripts) Create(ctx context.Context, t *conversation.Transcript) error {
	return s.upsert(ctx, t)
}

func (s *SQLiteTranscripts) Save(ctx context.Context, t *conversation.Transcript) error {
	return s.upsert(ctx, t)
}

func (s *SQLiteTranscripts) upsert(ctx context.Context, t *conversation.Transcript) error {
	entries, err := json.Marshal(t.Entries)
	if err != nil {
		return errors.Wrap(err, "could not encode transcript entries")
	}
	now := time.Now()
	created := t.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (user_id, scenario_id, entries, goal_met, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, scenario_id)
		 DO UPDATE SET entries = excluded.entries, goal_met = excluded.goal_met, updated_at = excluded.updated_at`,
		t.UserID, t.ScenarioID, string(entries), t.GoalMet, created, now)
	return errors.Wrap(err, "could not persist transcript")
}

func (s *SQLiteTranscripts) Delete(ctx context.Context, userID, scenarioID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transcripts WHERE user_id = ? AND scenario_id = ?`, userID, scenarioID)
	if err != nil {
		return errors.Wrap(err, "could not delete transcript")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type SQLiteScenarios struct {
	db *sqlx.DB
}

func NewSQLiteScenarios(db *sqlx.DB) *SQLiteScenarios {
	return &SQLiteScenarios{db: db}
}

var _ ScenarioStore = (*SQLiteScenarios)(nil)

func (s *SQLiteScenarios) Get(ctx context.Context, id string) (*scenario.Scenario, error) {
	var sc scenario.Scenario
	err := s.db.GetContext(ctx, &sc,
		`SELECT id, author_id, title, settings, ai_setting, mission, starting_message, img_source, created_at
		 FROM scenarios WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not load scenario")
	}
	return &sc, nil
}

func (s *SQLiteScenarios) List(ctx context.Context) ([]*scenario.Scenario, error) {
	ret := []*scenario.Scenario{}
	err := s.db.SelectContext(ctx, &ret,
		`SELECT id, author_id, title, settings, ai_setting, mission, starting_message, img_source, created_at
		 FROM scenarios ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "could not list scenarios")
	}
	return ret, nil
}

func (s *SQLiteScenarios) Put(ctx context.Context, sc *scenario.Scenario) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, author_id, title, settings, ai_setting, mission, starting_message, img_source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title, settings = excluded.settings, ai_setting = excluded.ai_setting,
		   mission = excluded.mission, starting_message = excluded.starting_message, img_source = excluded.img_source`,
		sc.ID, sc.AuthorID, sc.Title, sc.Settings, sc.AISetting, sc.Mission, sc.StartingMessage, sc.ImgSource, sc.CreatedAt)
	return errors.Wrap(err, "could not persist scenario")
}

type SQLiteExpressions struct {
	db *sqlx.DB
}

func NewSQLiteExpressions(db *sqlx.DB) *SQLiteExpressions {
	return &SQLiteExpressions{db: db}
}

var _ ExpressionStore = (*SQLiteExpressions)(nil)

func (s *SQLiteExpressions) Create(ctx context.Context, e *SavedExpression) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expressions (id, user_id, scenario_id, role, content, translation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ScenarioID, string(e.Role), e.Content, e.Translation, e.CreatedAt)
	return errors.Wrap(err, "could not persist expression")
}

func (s *SQLiteExpressions) DeleteByUserAndContent(ctx context.Context, userID, content string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM expressions WHERE user_id = ? AND content = ?`, userID, content)
	return errors.Wrap(err, "could not delete expression")
}

func (s *SQLiteExpressions) DeleteByID(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expressions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.Wrap(err, "could not delete expression")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteExpressions) ListByUser(ctx context.Context, userID string) ([]*SavedExpression, error) {
	ret := []*SavedExpression{}
	err := s.db.SelectContext(ctx, &ret,
		`SELECT id, user_id, scenario_id, role, content, translation, created_at
		 FROM expressions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list expressions")
	}
	return ret, nil
}

type SQLiteVocab struct {
	db *sqlx.DB
}

func NewSQLiteVocab(db *sqlx.DB) *SQLiteVocab {
	return &SQLiteVocab{db: db}
}

var _ VocabStore = (*SQLiteVocab)(nil)

func (s *SQLiteVocab) Create(ctx context.Context, v *VocabEntry) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vocab (id, user_id, scenario_id, content, translation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.ScenarioID, v.Content, v.Translation, v.CreatedAt)
	return errors.Wrap(err, "could not persist vocab entry")
}

func (s *SQLiteVocab) ListByUser(ctx context.Context, userID string) ([]*VocabEntry, error) {
	ret := []*VocabEntry{}
	err := s.db.SelectContext(ctx, &ret,
		`SELECT id, user_id, scenario_id, content, translation, created_at
		 FROM vocab WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list vocab entries")
	}
	return ret, nil
}

type SQLiteShared struct {
	db *sqlx.DB
}

func NewSQLiteShared(db *sqlx.DB) *SQLiteShared {
	return &SQLiteShared{db: db}
}

var _ SharedStore = (*SQLiteShared)(nil)

type sharedRow struct {
	ID         string    `db:"id"`
	ScenarioID string    `db:"scenario_id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Nickname   string    `db:"nickname"`
	Entries    string    `db:"entries"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *sharedRow) toRecord() (*SharedConversation, error) {
	sc := &SharedConversation{
		ID:         r.ID,
		ScenarioID: r.ScenarioID,
		UserID:     r.UserID,
		Title:      r.Title,
		Nickname:   r.Nickname,
		CreatedAt:  r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Entries), &sc.Entries); err != nil {
		return nil, errors.Wrap(err, "could not decode shared entries")
	}
	return sc, nil
}

func (s *SQLiteShared) Create(ctx context.Context, sc *SharedConversation) error {
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	entries, err := json.Marshal(sc.Entries)
	if err != nil {
		return errors.Wrap(err, "could not encode shared entries")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shared_conversations (id, scenario_id, user_id, title, nickname, entries, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.ScenarioID, sc.UserID, sc.Title, sc.Nickname, string(entries), sc.CreatedAt)
	return errors.Wrap(err, "could not persist shared conversation")
}

func (s *SQLiteShared) Get(ctx context.Context, id string) (*SharedConversation, error) {
	var row sharedRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, scenario_id, user_id, title, nickname, entries, created_at
		 FROM shared_conversations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not load shared conversation")
	}
	return row.toRecord()
}

func (s *SQLiteShared) ListByScenario(ctx context.Context, scenarioID string) ([]*SharedConversation, error) {
	rows := []sharedRow{}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, scenario_id, user_id, title, nickname, entries, created_at
		 FROM shared_conversations WHERE scenario_id = ? ORDER BY created_at DESC`, scenarioID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list shared conversations")
	}
	ret := make([]*SharedConversation, 0, len(rows))
	for i := range rows {
		sc, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		ret = append(ret, sc)
	}
	return ret, nil
}

func (s *SQLiteShared) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shared_conversations WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "could not delete shared conversation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
