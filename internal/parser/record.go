package parser

import (
	"time"

	"github.com/angelmondragon/farmledger/pkg/enums"
)

// Field is one name/value pair of an embedded field list.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Embed is the structured block a chat webhook attaches to a message.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// RawLogRecord is one chat-log message as delivered by the gateway.
type RawLogRecord struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Embeds    []Embed   `json:"embeds,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Candidate holds the raw facts extracted from one record, before item and actor resolution.
type Candidate struct {
	SourceID        string
	Kind            enums.ActivityKind
	RawItem         string
	RawQuantity     string
	RawAmount       string
	RawBalanceAfter string
	RawActor        string
	ActorAccountID  string
	Timestamp       time.Time
	// Structured is true when the facts came from an embedded field list.
	Structured bool
}
