// Package notes holds the note records that shards carry and the storage
// collaborator they are written through.
package notes

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notes: not found")

type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner,omitempty"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the remote collaborator. Every call is keyed by owner so one
// backend can hold many users' notes.
type Store interface {
	List(ctx context.Context, owner string) ([]Note, error)
	Create(ctx context.Context, n Note) error
	Update(ctx context.Context, owner, id, text string) error
	Delete(ctx context.Context, owner, id string) error
}

type Category struct {
	Name  string
	Color string
}

var Categories = []Category{
	{Name: "thoughts", Color: "rgba(148, 163, 184, 0.4)"},
	{Name: "memories", Color: "rgba(244, 114, 182, 0.4)"},
	{Name: "mood", Color: "rgba(52, 211, 153, 0.4)"},
	{Name: "todo", Color: "rgba(96, 165, 250, 0.4)"},
}

// Pastels colour notes that arrive without one.
var Pastels = []string{
	"rgba(173, 216, 230, 0.4)",
	"rgba(255, 182, 193, 0.4)",
	"rgba(221, 160, 221, 0.4)",
	"rgba(144, 238, 144, 0.4)",
	"rgba(255, 239, 184, 0.4)",
	"rgba(240, 248, 255, 0.4)",
}

// CategoryByName falls back to the first category for unknown names.
func CategoryByName(name string) Category {
	for _, c := range Categories {
		if c.Name == name {
			return c
		}
	}
	return Categories[0]
}

// PastelFor picks a stable pastel for id.
func PastelFor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return Pastels[h.Sum32()%uint32(len(Pastels))]
}

func NewID() string { return uuid.NewString() }

// New builds a note in category, stamped at now with a fresh id. An
// unknown category name is kept as given and coloured like the first
// category.
func New(owner, text, category string, now time.Time) Note {
	c := CategoryByName(category)
	if category == "" {
		category = c.Name
	}
	return Note{
		ID:        NewID(),
		Owner:     owner,
		Text:      text,
		Category:  category,
		Color:     c.Color,
		CreatedAt: now,
	}
}

// Normalize fills a missing category or colour.
func (n Note) Normalize() Note {
	if n.Category == "" {
		n.Category = Categories[0].Name
	}
	if n.Color == "" {
		n.Color = PastelFor(n.ID)
	}
	return n
}
