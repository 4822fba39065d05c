package quotexlsx

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound indicates no template file exists for the requested variant.
var ErrTemplateNotFound = errors.New("template not found")

// MalformedRangeError is returned when a range reference cannot be
// decomposed into four bounds.
type MalformedRangeError struct {
	Ref string
	Err error
}

func (e *MalformedRangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed range %q: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("malformed range %q", e.Ref)
}

func (e *MalformedRangeError) Unwrap() error {
	return e.Err
}

// AnchorDecodeError reports a drawing or VML part whose anchors could not be
// read. The part is passed through unmodified.
type AnchorDecodeError struct {
	Part   string
	Reason string
}

func (e *AnchorDecodeError) Error() string {
	return fmt.Sprintf("decode anchors in %q: %s", e.Part, e.Reason)
}

// ArchiveWriteError reports a part that could not be written to the output
// package. It always aborts the export.
type ArchiveWriteError struct {
	Part string
	Err  error
}

func (e *ArchiveWriteError) Error() string {
	return fmt.Sprintf("write part %q: %v", e.Part, e.Err)
}

func (e *ArchiveWriteError) Unwrap() error {
	return e.Err
}

// ExportError is the single failure surfaced to callers of Exporter.Export.
type ExportError struct {
	Stage string // "template", "layout", "rows", "cells", "save", "repackage"
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("quote export failed at %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func newExportError(stage string, err error) *ExportError {
	return &ExportError{Stage: stage, Err: err}
}
