package event

import (
	"image"
	"time"
)

// CodeGenerated is published when a code image has been rendered.
// The image replaces whatever the studio held before.
type CodeGenerated struct {
	baseJobEvent
	Kind        string
	Payload     string
	Image       image.Image
	GeneratedAt time.Time
}

func NewCodeGenerated(jobID, kind, payload string, img image.Image) *CodeGenerated {
	return &CodeGenerated{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Kind:         kind,
		Payload:      payload,
		Image:        img,
		GeneratedAt:  time.Now(),
	}
}

func (e *CodeGenerated) EventName() string {
	return "CodeGenerated"
}

// GenerateFailed is published when rendering a code image fails.
// Reason is a user-presentable sentence; Error carries the cause.
type GenerateFailed struct {
	baseJobEvent
	Reason string
	Error  error
}

func NewGenerateFailed(jobID, reason string, err error) *GenerateFailed {
	return &GenerateFailed{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Reason:       reason,
		Error:        err,
	}
}

func (e *GenerateFailed) EventName() string {
	return "GenerateFailed"
}

// CodeSaved is published when the held image has been written to disk.
type CodeSaved struct {
	baseJobEvent
	Path string
}

func NewCodeSaved(jobID, path string) *CodeSaved {
	return &CodeSaved{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Path:         path,
	}
}

func (e *CodeSaved) EventName() string {
	return "CodeSaved"
}

// SaveFailed is published when writing the held image fails,
// including when there is no held image to write.
type SaveFailed struct {
	baseJobEvent
	Reason string
	Error  error
}

func NewSaveFailed(jobID, reason string, err error) *SaveFailed {
	return &SaveFailed{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Reason:       reason,
		Error:        err,
	}
}

func (e *SaveFailed) EventName() string {
	return "SaveFailed"
}
