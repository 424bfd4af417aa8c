package entity

import "errors"

var (
	// ErrInputNotFound marks a missing source video or upstream artifact.
	// Stages abort on it before any work begins.
	ErrInputNotFound = errors.New("input not found")

	// ErrMalformedArtifact marks a checkpoint that exists but fails
	// validation. The dependent stage aborts rather than proceed on it.
	ErrMalformedArtifact = errors.New("malformed artifact")
)
