// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the validators.
var (
	ErrTopicRequired = errors.New("topic name is required")
	ErrTopicNewline  = errors.New("topic name cannot contain line breaks")
	ErrInputRequired = errors.New("message is required")
)

// TopicName validates a topic name is non-empty after trimming whitespace and
// fits on a single line.
func TopicName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTopicRequired
	}
	if strings.ContainsAny(name, "\r\n") {
		return ErrTopicNewline
	}
	return nil
}

// ChatInput validates a chat message has content other than whitespace.
func ChatInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInputRequired
	}
	return nil
}
