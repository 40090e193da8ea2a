package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/repository"
)

// lookupErr maps a repository lookup failure onto the domain error model:
// a missing row becomes a ReferenceError, anything else a StoreError.
func lookupErr(err error, entity, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.ReferenceError{Entity: entity, ID: id}
	}
	return &domain.StoreError{Op: "get " + entity, Err: err}
}

// storeErr wraps a write failure. Typed domain errors pass through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *domain.ValidationError
		re *domain.ReferenceError
		se *domain.StoreError
	)
	if errors.As(err, &ve) || errors.As(err, &re) || errors.As(err, &se) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import file has %d errors:", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return &domain.ValidationError{Msg: msg}
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// dayPtr truncates a planned date to its calendar day.
func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.TruncateDay(*t)
	return &d
}
