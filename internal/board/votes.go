package board

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/limbo-app/limbo/internal/models"
	"github.com/limbo-app/limbo/pkg/telemetry"
)

// VoteAction names the transition a cast performed
type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteChanged VoteAction = "changed"
	VoteRemoved VoteAction = "removed"
)

// VoteResult reports the outcome of a cast: which transition ran and the
// resulting vote type, nil after a removal.
type VoteResult struct {
	Action        VoteAction       `json:"action"`
	ResultingType *models.VoteType `json:"resultingType"`
}

// CastVote applies one step of the per-(user, confession) vote state
// machine:
//
//	NoVote     + cast(T)          -> Voted(T)   action=added
//	Voted(T)   + cast(T)          -> NoVote     action=removed
//	Voted(T)   + cast(T'), T'!=T  -> Voted(T')  action=changed
//
// The confession must exist, be approved and not expired. Every
// transition triggers counter reconciliation on the confession.
func (s *Service) CastVote(ctx context.Context, userID, confessionID int64, voteType models.VoteType) (*VoteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "board.cast_vote")
	defer span.End()

	if !voteType.Valid() {
		return nil, Ef(KindValidation, "invalid vote type %q", voteType)
	}
	if err := s.checkQuota(strconv.FormatInt(userID, 10), ActionVote); err != nil {
		return nil, err
	}

	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load confession")
	}
	if confession == nil {
		return nil, Ef(KindNotFound, "confession %d not found", confessionID)
	}
	if confession.Status != models.StatusApproved {
		return nil, Ef(KindForbidden, "confession %d is %s, voting requires approved", confessionID, confession.Status)
	}
	if confession.IsExpired(s.now()) {
		return nil, Ef(KindGone, "confession %d has expired", confessionID)
	}

	existing, err := s.votes.GetByUserConfession(ctx, userID, confessionID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load existing vote")
	}

	result, err := s.applyVoteTransition(ctx, userID, confessionID, voteType, existing)
	if err != nil {
		return nil, err
	}

	// The ledger write is committed; reconciliation failures must not
	// undo it.
	s.triggerVoteReconcile(ctx, confessionID)

	return result, nil
}

// applyVoteTransition runs one state machine step given the vote the
// request observed (possibly nil).
func (s *Service) applyVoteTransition(ctx context.Context, userID, confessionID int64, voteType models.VoteType, existing *models.Vote) (*VoteResult, error) {
	if existing == nil {
		vote := &models.Vote{
			UserID:       userID,
			ConfessionID: confessionID,
			Type:         voteType,
		}
		err := s.votes.Create(ctx, vote)
		if err == nil {
			s.recordVoteCast(ctx, userID)
			t := voteType
			return &VoteResult{Action: VoteAdded, ResultingType: &t}, nil
		}
		if !isUniqueViolation(err) {
			return nil, Wrap(KindInternal, err, "create vote")
		}

		// A concurrent request inserted first. Recover by re-reading and
		// treating the winner's record as if it had been seen all along;
		// the conflict never surfaces to the caller.
		existing, rerr := s.votes.GetByUserConfession(ctx, userID, confessionID)
		if rerr != nil {
			return nil, Wrap(KindInternal, rerr, "re-read vote after conflict")
		}
		if existing == nil {
			// The racing vote was already removed again; retry the insert once.
			if err := s.votes.Create(ctx, vote); err != nil {
				return nil, Wrap(KindConflict, err, "vote insert race")
			}
			s.recordVoteCast(ctx, userID)
			t := voteType
			return &VoteResult{Action: VoteAdded, ResultingType: &t}, nil
		}
		return s.applyVoteTransition(ctx, userID, confessionID, voteType, existing)
	}

	if existing.Type == voteType {
		// Same type resubmitted: toggle off
		if err := s.votes.Delete(ctx, existing.ID); err != nil {
			return nil, Wrap(KindInternal, err, "remove vote")
		}
		return &VoteResult{Action: VoteRemoved, ResultingType: nil}, nil
	}

	// Opposite type: switch in place
	existing.Type = voteType
	if err := s.votes.Update(ctx, existing); err != nil {
		return nil, Wrap(KindInternal, err, "switch vote")
	}
	t := voteType
	return &VoteResult{Action: VoteChanged, ResultingType: &t}, nil
}

// GetUserVote returns the user's current vote on a confession, nil when
// none exists.
func (s *Service) GetUserVote(ctx context.Context, userID, confessionID int64) (*models.Vote, error) {
	vote, err := s.votes.GetByUserConfession(ctx, userID, confessionID)
	if err != nil {
		return nil, Wrap(KindInternal, err, "load vote")
	}
	return vote, nil
}

// isUniqueViolation reports whether err is a unique-index violation from
// any of the supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
