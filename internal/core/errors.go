package core

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrHistoryNotFound     = errors.New("generation history not found")
	ErrImageNotFound       = errors.New("generated image not found")
	ErrInterviewIncomplete = errors.New("interview not completed")
	ErrNoImageGenerator    = errors.New("image generation is not configured")
)
