package notification

import (
	"context"
	"fmt"
	"log"

	"AcademyNotify/internal/auth"
	"AcademyNotify/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// buildConcurrency bounds the per-recipient token lookups within one
// dispatch; the store calls are independent and side-effect-free.
const buildConcurrency = 8

// NotificationService runs the fan-out: resolve the audience, build the
// per-user payloads, then persist and send through the coordinator.
type NotificationService struct {
	resolver    *AudienceResolver
	builder     *PayloadBuilder
	coordinator *DeliveryCoordinator
	users       UserStore
	records     RecordStore
}

func NewService(resolver *AudienceResolver, builder *PayloadBuilder, coordinator *DeliveryCoordinator, users UserStore, records RecordStore) *NotificationService {
	return &NotificationService{
		resolver:    resolver,
		builder:     builder,
		coordinator: coordinator,
		users:       users,
		records:     records,
	}
}

// DispatchSessionCreated fans a newly created session out to its coaches and
// the parents of students in its age group. Fire-and-forget: there is no
// caller to report to, so every failure is logged and swallowed.
func (s *NotificationService) DispatchSessionCreated(ctx context.Context, session *Session) {
	log.Println("New session created:", session.ID.Hex())

	recipients := s.resolver.ResolveSessionAudience(ctx, session)
	if len(recipients) == 0 {
		log.Println("No recipients for session", session.ID.Hex())
		return
	}

	content := s.builder.SessionContent(session)
	records, messages := s.buildAll(ctx, recipients, content)
	s.coordinator.Deliver(ctx, records, messages)
}

// buildAll constructs the record and optional push message for every
// recipient. The token lookups are independent, so they run in a bounded
// group; results keep recipient order.
func (s *NotificationService) buildAll(ctx context.Context, recipients []Recipient, content MessageContent) ([]*NotificationRecord, []*config.PushMessage) {
	type built struct {
		record  *NotificationRecord
		message *config.PushMessage
	}
	results := make([]built, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for i, recipient := range recipients {
		i, recipient := i, recipient
		g.Go(func() error {
			record, message := s.builder.BuildForRecipient(gctx, recipient, content)
			results[i] = built{record: record, message: message}
			return nil
		})
	}
	_ = g.Wait()

	var records []*NotificationRecord
	var messages []*config.PushMessage
	for _, res := range results {
		if res.record != nil {
			records = append(records, res.record)
		}
		if res.message != nil {
			messages = append(messages, res.message)
		}
	}
	return records, messages
}

// SendBroadcast is the admin command path. Arguments are validated before any
// store query; the caller's role is re-read from the store rather than
// trusted from the token. Partial push failures are reported in the result,
// not as an error.
func (s *NotificationService) SendBroadcast(ctx context.Context, callerID primitive.ObjectID, req BroadcastRequest) (*BroadcastResult, error) {
	if req.Title == "" || req.Body == "" || req.TargetAudience == "" {
		return nil, ErrInvalidArgument
	}
	switch req.TargetAudience {
	case AudienceAllCoaches, AudienceAllParents, AudienceEveryone:
	default:
		return nil, ErrInvalidAudience
	}

	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil || caller.Role != auth.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	log.Printf("Admin %s sending broadcast to %s", callerID.Hex(), req.TargetAudience)

	users, err := s.resolver.ResolveBroadcastAudience(ctx, req.TargetAudience)
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d users to notify", len(users))

	content := BroadcastContent(req.Title, req.Body)
	var records []*NotificationRecord
	var messages []*config.PushMessage
	for _, user := range users {
		record, message := s.builder.BuildForUser(user, content)
		records = append(records, record)
		if message != nil {
			messages = append(messages, message)
		}
	}

	outcome := s.coordinator.Deliver(ctx, records, messages)
	if outcome.PersistErr != nil {
		return nil, fmt.Errorf("error saving notifications: %w", outcome.PersistErr)
	}
	if outcome.SendErr != nil {
		return nil, fmt.Errorf("error sending notifications: %w", outcome.SendErr)
	}

	return &BroadcastResult{
		Success:            true,
		TotalUsers:         len(users),
		NotificationsSaved: outcome.Saved,
		FCMSent:            outcome.Sent,
		FCMFailed:          outcome.Failed,
	}, nil
}

// ListNotifications returns a user's history, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID primitive.ObjectID) ([]*NotificationRecord, error) {
	return s.records.ListByUser(ctx, userID, 50)
}
