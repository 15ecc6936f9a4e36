package scenario

import "time"

// Scenario is the read-side description of a roleplay situation. Authoring
// and image ingestion happen outside this service; we only ever consume
// scenarios that already exist in the store.
type Scenario struct {
	ID       string `json:"id" yaml:"id" db:"id"`
	AuthorID string `json:"authorId" yaml:"authorId" db:"author_id"`
	Title    string `json:"title" yaml:"title" db:"title"`
	// Settings describes the situation the user is placed in ("You are at a
	// coffee shop in Paris...").
	Settings string `json:"settings" yaml:"settings" db:"settings"`
	// AISetting describes the persona the assistant plays.
	AISetting string `json:"aiSetting" yaml:"aiSetting" db:"ai_setting"`
	// Mission is the goal the user is trying to achieve, judged by the goal
	// evaluator.
	Mission string `json:"mission" yaml:"mission" db:"mission"`
	// StartingMessage is the scripted opening line of the assistant.
	StartingMessage string    `json:"startingMessage" yaml:"startingMessage" db:"starting_message"`
	ImgSource       string    `json:"imgSource,omitempty" yaml:"imgSource,omitempty" db:"img_source"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt,omitempty" db:"created_at"`
}
