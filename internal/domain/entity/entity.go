// Package entity defines the searchable record model shared by the index,
// search and backup layers.
package entity

import (
	"fmt"
	"strings"
	"time"
)

// Type is a named category of searchable record, each with its own collection.
type Type string

// Known entity types.
const (
	TypeUser       Type = "user"
	TypeCourse     Type = "course"
	TypeLesson     Type = "lesson"
	TypeDiscussion Type = "discussion"
	TypeComment    Type = "comment"
	TypeActivity   Type = "activity"
	TypeContent    Type = "content"
)

// All returns every known entity type in a stable order.
func All() []Type {
	return []Type{
		TypeUser, TypeCourse, TypeLesson, TypeDiscussion,
		TypeComment, TypeActivity, TypeContent,
	}
}

// Parse validates a type name. Unknown names are not an error at the
// collection level (searching them yields empty results), but callers that
// mutate the index require a known type.
func Parse(s string) (Type, error) {
	t := Type(s)
	for _, known := range All() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Entity is a single searchable record. ID is unique within its type's
// collection. Collections live for the process lifetime only; durability
// comes from backups.
type Entity struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SearchText returns the lowercased concatenation of all text fields.
// Free-text matching is substring containment over this string.
func (e Entity) SearchText() string {
	var b strings.Builder
	b.Grow(len(e.Title) + len(e.Content) + len(e.Description) + 16)
	b.WriteString(e.Title)
	b.WriteByte(' ')
	b.WriteString(e.Content)
	b.WriteByte(' ')
	b.WriteString(e.Description)
	for _, tag := range e.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	return strings.ToLower(b.String())
}

// Field resolves a one-level dotted field path against the entity.
// Top-level names map to typed struct fields; "metadata.<key>" reaches into
// the metadata map. The second return is false when the path does not resolve.
func (e Entity) Field(path string) (any, bool) {
	parent, child, dotted := strings.Cut(path, ".")
	if dotted {
		if parent != "metadata" || e.Metadata == nil {
			return nil, false
		}
		v, ok := e.Metadata[child]
		return v, ok
	}

	switch path {
	case "id":
		return e.ID, true
	case "type":
		return string(e.Type), true
	case "title":
		return e.Title, true
	case "content":
		return e.Content, true
	case "description":
		return e.Description, true
	case "tags":
		return e.Tags, true
	case "created_at", "createdAt":
		return e.CreatedAt, true
	case "updated_at", "updatedAt":
		return e.UpdatedAt, true
	default:
		if e.Metadata != nil {
			v, ok := e.Metadata[path]
			return v, ok
		}
		return nil, false
	}
}

// Clone returns a deep copy safe to hand out across the index boundary.
func (e Entity) Clone() Entity {
	c := e
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
