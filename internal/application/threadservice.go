package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
	"github.com/ericfisherdev/prresolver/internal/domain/port/driven"
)

// ThreadService performs write operations on review threads.
type ThreadService struct {
	writer      driven.GitHubWriter
	defaultRepo string
}

// NewThreadService creates a ThreadService. defaultRepo may be empty.
func NewThreadService(writer driven.GitHubWriter, defaultRepo string) *ThreadService {
	return &ThreadService{
		writer:      writer,
		defaultRepo: defaultRepo,
	}
}

// ResolveThread marks the review thread with the given GraphQL node ID resolved
// and returns the resolved flag reported afterwards. Resolving an already
// resolved thread succeeds: when the mutation is rejected, the thread state is
// re-read and a resolved thread yields true. Otherwise the rejection is returned.
func (s *ThreadService) ResolveThread(ctx context.Context, threadID string) (bool, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return false, fmt.Errorf("%w: empty thread id", model.ErrMalformedReference)
	}

	resolved, err := s.writer.ResolveReviewThread(ctx, threadID)
	if err == nil {
		slog.Info("review thread resolved", "thread_id", threadID, "is_resolved", resolved)
		return resolved, nil
	}
	if !errors.Is(err, model.ErrGraphQLOperationFailed) {
		return false, err
	}

	already, stateErr := s.writer.FetchThreadResolved(ctx, threadID)
	if stateErr != nil {
		slog.Debug("thread state check after rejected resolve failed",
			"thread_id", threadID,
			"error", stateErr,
		)
		return false, err
	}
	if !already {
		return false, err
	}

	slog.Info("review thread already resolved", "thread_id", threadID)
	return true, nil
}

// ReplyToComment posts a reply to a review comment. commentID is the REST
// database ID of any comment in the thread.
func (s *ThreadService) ReplyToComment(ctx context.Context, reference, repo string, commentID int64, body string) (*model.ReviewComment, error) {
	ref, err := model.ResolveReference(reference, repo, s.defaultRepo)
	if err != nil {
		return nil, err
	}
	if commentID <= 0 {
		return nil, fmt.Errorf("%w: invalid comment id %d", model.ErrMalformedReference, commentID)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty reply body", model.ErrMalformedReference)
	}

	reply, err := s.writer.ReplyToReviewComment(ctx, ref.Repo, ref.Number, commentID, body)
	if err != nil {
		return nil, err
	}

	slog.Info("replied to review comment", "pr", ref.String(), "comment_id", commentID, "reply_id", reply.ID)
	return reply, nil
}
