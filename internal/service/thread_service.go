package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/domain"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/repository"
	apperrors "github.com/brainrot-market/market-service/pkg/util/errorutil"
)

// ThreadService covers direct message threads between users plus staff
// broadcast threads every account can read.
type ThreadService struct {
	threads    repository.ThreadRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ThreadDependencies bundles requirements for the thread service.
type ThreadDependencies struct {
	ThreadRepo repository.ThreadRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewThreadService constructs the service.
func NewThreadService(deps ThreadDependencies) *ThreadService {
	return &ThreadService{
		threads:    deps.ThreadRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Start opens a thread between the creator and the given participants,
// with an optional first message.
func (s *ThreadService) Start(ctx context.Context, creator *domain.User, participantIDs []string, firstMessage string) (*domain.Thread, error) {
	participants := dedupe(append(participantIDs, creator.ID))
	if len(participants) < 2 {
		return nil, apperrors.NewValidationError("missing_participants", "at least one other participant is required")
	}
	for _, id := range participants {
		if id == creator.ID {
			continue
		}
		if _, err := s.users.GetByID(ctx, id); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	thread := &domain.Thread{
		CreatedBy:      creator.ID,
		ParticipantIDs: participants,
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, apperrors.MapError(err)
	}
	if msg := strings.TrimSpace(firstMessage); msg != "" {
		if _, err := s.Send(ctx, creator, thread.ID, msg); err != nil {
			s.logger.Warn("thread: first message failed",
				zap.String("thread_id", thread.ID), zap.Error(err))
		}
	}
	return thread, nil
}

// StartBroadcast opens a staff broadcast thread visible to everyone.
func (s *ThreadService) StartBroadcast(ctx context.Context, creator *domain.User, firstMessage string) (*domain.Thread, error) {
	thread := &domain.Thread{
		CreatedBy:      creator.ID,
		Broadcast:      true,
		ParticipantIDs: []string{creator.ID},
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, apperrors.MapError(err)
	}
	if msg := strings.TrimSpace(firstMessage); msg != "" {
		if _, err := s.Send(ctx, creator, thread.ID, msg); err != nil {
			s.logger.Warn("thread: first message failed",
				zap.String("thread_id", thread.ID), zap.Error(err))
		}
	}
	return thread, nil
}

// List returns the caller's threads, most recently active first.
func (s *ThreadService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Thread, error) {
	threads, err := s.threads.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return threads, nil
}

// Get returns a thread and its messages for a participant.
func (s *ThreadService) Get(ctx context.Context, viewer *domain.User, threadID string, limit int) (*domain.Thread, []domain.ThreadMessage, error) {
	ok, err := s.threads.IsParticipant(ctx, threadID, viewer.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, nil, apperrors.NewForbidden("not a participant of this thread")
	}
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	messages, err := s.threads.ListMessages(ctx, threadID, limit)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return thread, messages, nil
}

// Send appends a message and notifies the other participants. Only
// staff may post into broadcast threads.
func (s *ThreadService) Send(ctx context.Context, sender *domain.User, threadID, body string) (*domain.ThreadMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("missing_body", "message body is required")
	}

	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if thread.Broadcast {
		if !sender.Role.IsStaff() {
			return nil, apperrors.NewForbidden("only staff may post announcements")
		}
	} else if !contains(thread.ParticipantIDs, sender.ID) {
		return nil, apperrors.NewForbidden("not a participant of this thread")
	}

	msg := &domain.ThreadMessage{
		ThreadID:   threadID,
		SenderID:   sender.ID,
		SenderName: displayNameOf(sender),
		Body:       body,
	}
	if err := s.threads.AppendMessage(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, participant := range thread.ParticipantIDs {
		if participant == sender.ID {
			continue
		}
		s.publish(ctx, events.Event{
			Type:   events.EventThreadMessage,
			UserID: participant,
			Actor:  actorOf(sender),
			Payload: events.ThreadMessagePayload{
				ThreadID:    threadID,
				BodyPreview: preview(body),
			},
		})
	}
	return msg, nil
}

func (s *ThreadService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
