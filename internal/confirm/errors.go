package confirm

import "errors"

var (
	// ErrPromptNotFound is returned for ids that were never issued or are already swept.
	ErrPromptNotFound = errors.New("confirmation prompt not found")

	// ErrPromptResolved is returned when a prompt is answered twice.
	ErrPromptResolved = errors.New("confirmation prompt already resolved")

	// ErrPromptExpired is the outcome of prompts that nobody answered in time.
	ErrPromptExpired = errors.New("confirmation prompt expired")
)
