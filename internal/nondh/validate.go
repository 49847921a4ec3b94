// Package nondh holds the pure rules applied to nondhs during ingestion:
// per-record validation, survey-reference classification, sequencing and
// validity chain resolution.
package nondh

import (
	"fmt"

	"github.com/stwalsh4118/landrecords/internal/models"
	"github.com/stwalsh4118/landrecords/internal/validation"
)

// EntryValidator checks one nondh detail record at a time.
type EntryValidator struct {
	v *validation.Validator
}

// NewEntryValidator creates an EntryValidator backed by v.
func NewEntryValidator(v *validation.Validator) *EntryValidator {
	return &EntryValidator{v: v}
}

// Validate returns every message for detail, or nil if it is clean.
// Every rule is evaluated. priorValidCount is the number of records accepted
// before this one and only labels the messages.
func (e *EntryValidator) Validate(detail *models.NondhDetailInput, priorValidCount int) []string {
	violations, advisories := e.Check(detail, priorValidCount)
	return append(violations, advisories...)
}

// Check is Validate split in two. A non-empty violations list rejects the
// record; advisories are reported while the record is still stored, as with
// an invalid status that arrives without a reason.
func (e *EntryValidator) Check(detail *models.NondhDetailInput, priorValidCount int) (violations, advisories []string) {
	if detail == nil {
		return []string{fmt.Sprintf("%s: record is empty", label(nil, priorValidCount))}, nil
	}

	rejections, notes := e.v.Check(detail)
	prefix := label(detail, priorValidCount)
	return prefixed(prefix, rejections), prefixed(prefix, notes)
}

func prefixed(prefix string, messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, prefix+": "+msg)
	}
	return out
}

func label(detail *models.NondhDetailInput, priorValidCount int) string {
	position := priorValidCount + 1
	if detail == nil || detail.NondhNumber == "" {
		return fmt.Sprintf("nondh detail #%d", position)
	}
	return fmt.Sprintf("nondh detail #%d (nondh %s)", position, detail.NondhNumber)
}
