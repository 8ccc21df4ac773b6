package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// Service errors
var (
	ErrCompetitionNotLive  = errors.Conflict("scores can only be submitted while the competition is live")
	ErrCompetitionIsLive   = errors.Conflict("a live competition cannot be deleted - end it first")
	ErrCompetitionEnded    = errors.Conflict("competition has already ended")
	ErrNoLiveCompetition   = errors.NotFound("no competition is live")
	ErrDuplicateEntry      = errors.Conflict("gymnast is already entered in this competition")
	ErrClubInUse           = errors.Conflict("club still has gymnasts")
	ErrUsernameTaken       = errors.Conflict("username is already taken")
	ErrInvalidCredentials  = errors.Unauthorized("invalid username or password")
	ErrOwnRole             = errors.Conflict("you cannot change your own role")
	ErrApplicationReviewed = errors.Conflict("application has already been reviewed")
	ErrAlreadyAthlete      = errors.Conflict("account is already linked to a gymnast")
	ErrPendingApplication  = errors.Conflict("an application is already pending")
	ErrAdminApplication    = errors.Conflict("admins cannot apply as athletes")
)

// Score bounds shared by difficulty, penalty and execution marks
const (
	MinMark = 0.0
	MaxMark = 10.0
)

// lookupError turns a repository miss into a NotFound error naming the
// missing record. Anything else is an internal error.
func lookupError(err error, what string, id int) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFoundf("%s %d not found", what, id)
	}
	return internalError(err)
}

// internalError wraps unexpected store errors, passing application errors through
func internalError(err error) error {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.Internal(err)
}

// consistencyError reports a rolled-back cascade. Guard failures raised
// inside the transaction keep their own kind.
func consistencyError(what string, err error) error {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) && appErr.Kind != errors.ErrInternal {
		return err
	}
	return errors.Consistency(fmt.Sprintf("failed to delete %s; no changes were made", what), err)
}

// requireText rejects a blank required field
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.FieldValidation(field, field+" is required")
	}
	return nil
}

// checkMark validates one score component
func checkMark(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.FieldValidation(field, field+" must be a number")
	}
	if v < MinMark || v > MaxMark {
		return errors.FieldValidation(field, fmt.Sprintf("%s must be between %g and %g", field, MinMark, MaxMark))
	}
	return nil
}

// deleteEntries removes judge scores, scores and then the entries themselves
func deleteEntries(ctx context.Context, tx repository.FullRepository, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.DeleteJudgeScoresForEntries(ctx, ids); err != nil {
		return err
	}
	if err := tx.DeleteScoresForEntries(ctx, ids); err != nil {
		return err
	}
	return tx.DeleteEntries(ctx, ids)
}

// deleteEntriesWhere cascades over every entry matching filter
func deleteEntriesWhere(ctx context.Context, tx repository.FullRepository, filter repository.EntryFilter) (int, error) {
	ids, err := tx.ListEntryIDs(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(ids), deleteEntries(ctx, tx, ids)
}
