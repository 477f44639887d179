package assignment

import "errors"

var (
	// ErrSelectorRequired is returned when a task selector is not provided.
	ErrSelectorRequired = errors.New("task selector required")

	// ErrNoTopics is returned when a topic request contains no topics.
	ErrNoTopics = errors.New("no topics requested")
)
