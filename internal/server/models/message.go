package models

import (
	"fmt"
	"time"
)

// MessageStatus is where a message is in the reply workflow.
type MessageStatus string

const (
	MessageNew     MessageStatus = "new"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

func ParseMessageStatus(s string) (MessageStatus, error) {
	switch st := MessageStatus(s); st {
	case MessageNew, MessageRead, MessageReplied:
		return st, nil
	default:
		return "", fmt.Errorf("unknown message status %q", s)
	}
}

// Message is a contact-form submission.
type Message struct {
	ID         string        `json:"id"`
	FullName   string        `json:"fullName"`
	Email      string        `json:"email"`
	Subject    string        `json:"subject"`
	Body       string        `json:"message"`
	Status     MessageStatus `json:"status"`
	IsArchived bool          `json:"isArchived"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// MessageUpdate changes only its non-nil fields.
type MessageUpdate struct {
	Status     *MessageStatus `json:"status,omitempty"`
	IsArchived *bool          `json:"isArchived,omitempty"`
}

// MessageView selects which messages an inbox listing shows.
type MessageView string

const (
	// ViewAll is every message that is not archived.
	ViewAll      MessageView = "all"
	ViewArchived MessageView = "archived"
	ViewNew      MessageView = "new"
	ViewRead     MessageView = "read"
	ViewReplied  MessageView = "replied"
)

func ParseMessageView(s string) (MessageView, error) {
	switch v := MessageView(s); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewArchived, ViewNew, ViewRead, ViewReplied:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}
