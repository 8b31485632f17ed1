package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrNoteTitleEmpty   = errors.New("note title cannot be empty")
	ErrNoteTitleTooLong = errors.New("note title is too long (max 200 chars)")
)

const MaxNoteTitleLen = 200

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func validateNoteTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrNoteTitleEmpty
	}
	if len(t) > MaxNoteTitleLen {
		return "", ErrNoteTitleTooLong
	}
	return t, nil
}

func NewNote(title, content string, now time.Time) (*Note, error) {
	t, err := validateNoteTitle(title)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Note{
		ID:        uuid.NewString(),
		Title:     t,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (n *Note) Edit(title, content string, now time.Time) error {
	t, err := validateNoteTitle(title)
	if err != nil {
		return err
	}

	n.Title = t
	n.Content = content
	n.UpdatedAt = now.UTC()
	return nil
}
