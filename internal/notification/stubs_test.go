package notification

import (
	"context"
	"sync"
	"time"

	"AcademyNotify/internal/auth"
	"AcademyNotify/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubUserStore struct {
	mu sync.Mutex

	usersByID      map[primitive.ObjectID]*auth.User
	parentsByEmail map[string]*auth.User
	usersByRole    map[string][]*auth.User

	findByIDErr error
	parentErr   error
	rolesErr    error

	idLookups     int
	parentLookups []string
	roleQueries   int
}

func (s *stubUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idLookups++
	if s.findByIDErr != nil {
		return nil, s.findByIDErr
	}
	return s.usersByID[id], nil
}

func (s *stubUserStore) FindParentByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parentLookups = append(s.parentLookups, email)
	if s.parentErr != nil {
		return nil, s.parentErr
	}
	return s.parentsByEmail[email], nil
}

func (s *stubUserStore) FindByRoles(_ context.Context, roles []string) ([]*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleQueries++
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	var users []*auth.User
	for _, role := range roles {
		users = append(users, s.usersByRole[role]...)
	}
	return users, nil
}

type stubStudentStore struct {
	students []*Student
	err      error
	queries  int
}

func (s *stubStudentStore) FindStudentsByAgeGroup(_ context.Context, _ string) ([]*Student, error) {
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	return s.students, nil
}

type stubRecordStore struct {
	saved   [][]*NotificationRecord
	saveErr error
	history []*NotificationRecord
	listErr error
}

func (s *stubRecordStore) SaveNotifications(_ context.Context, records []*NotificationRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, records)
	return nil
}

func (s *stubRecordStore) ListByUser(_ context.Context, userID primitive.ObjectID, _ int64) ([]*NotificationRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var records []*NotificationRecord
	for _, record := range s.history {
		if record.TargetUserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

// savedRecords flattens all persisted batches.
func (s *stubRecordStore) savedRecords() []*NotificationRecord {
	var records []*NotificationRecord
	for _, batch := range s.saved {
		records = append(records, batch...)
	}
	return records
}

type stubPushSender struct {
	calls  [][]*config.PushMessage
	report *config.PushReport
	err    error
}

func (s *stubPushSender) SendEach(_ context.Context, messages []*config.PushMessage) (*config.PushReport, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return nil, s.err
	}
	if s.report != nil {
		return s.report, nil
	}
	return &config.PushReport{SuccessCount: len(messages)}, nil
}

func newTestService(users *stubUserStore, students *stubStudentStore, records *stubRecordStore, push *stubPushSender) *NotificationService {
	resolver := NewAudienceResolver(users, students)
	builder := NewPayloadBuilder(users, time.UTC)
	coordinator := NewDeliveryCoordinator(records, push)
	return NewService(resolver, builder, coordinator, users, records)
}

func testUser(role, token string) *auth.User {
	return &auth.User{
		ID:       primitive.NewObjectID(),
		Name:     "Test User",
		Email:    primitive.NewObjectID().Hex() + "@example.com",
		Role:     role,
		FCMToken: token,
	}
}
