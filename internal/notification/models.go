package notification

import (
	"context"
	"errors"
	"time"

	"AcademyNotify/internal/auth"
	"AcademyNotify/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeClassScheduled = "class_scheduled"
	TypeBroadcast      = "broadcast"

	AudienceAllCoaches = "all_coaches"
	AudienceAllParents = "all_parents"
	AudienceEveryone   = "everyone"

	// TargetRoleParent is the role tag recorded on notifications for parents
	// resolved from a session's age group; the user documents themselves
	// carry auth.RoleParent.
	TargetRoleParent = "parent"
)

// Session is created by the scheduling side of the application; this service
// only ever reads it.
type Session struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ClassName        string             `bson:"class_name" json:"class_name"`
	AgeGroup         string             `bson:"age_group" json:"age_group"`
	Venue            string             `bson:"venue" json:"venue"`
	StartTime        *time.Time         `bson:"start_time,omitempty" json:"start_time,omitempty"`
	LeadCoachID      primitive.ObjectID `bson:"lead_coach_id,omitempty" json:"lead_coach_id,omitempty"`
	AssistantCoachID primitive.ObjectID `bson:"assistant_coach_id,omitempty" json:"assistant_coach_id,omitempty"`
}

// Student maps an age group to a parent email. Nothing else about the student
// matters to this service.
type Student struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	AgeGroup    string             `bson:"age_group" json:"age_group"`
	ParentEmail string             `bson:"parent_email" json:"parent_email"`
}

// NotificationRecord is the persisted history entry, one per notified user.
// Its lifecycle is independent from push delivery: a record is saved even if
// the push fails or the user has no device token.
type NotificationRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title            string             `bson:"title" json:"title"`
	Body             string             `bson:"body" json:"body"`
	Type             string             `bson:"type" json:"type"`
	TargetUserID     primitive.ObjectID `bson:"target_user_id" json:"target_user_id"`
	TargetRole       string             `bson:"target_role" json:"target_role"`
	RelatedSessionID primitive.ObjectID `bson:"related_session_id,omitempty" json:"related_session_id,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	Read             bool               `bson:"read" json:"read"`
}

// Recipient is one resolved (user, role) pair to notify.
type Recipient struct {
	UserID primitive.ObjectID
	Role   string
}

type BroadcastRequest struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	TargetAudience string `json:"targetAudience"`
}

type BroadcastResult struct {
	Success            bool `json:"success"`
	TotalUsers         int  `json:"totalUsers"`
	NotificationsSaved int  `json:"notificationsSaved"`
	FCMSent            int  `json:"fcmSent"`
	FCMFailed          int  `json:"fcmFailed"`
}

var (
	ErrPermissionDenied = errors.New("only admins can send broadcast notifications")
	ErrInvalidArgument  = errors.New("missing required fields: title, body, targetAudience")
	ErrInvalidAudience  = errors.New("invalid targetAudience, must be: all_coaches, all_parents, or everyone")
)

// The dispatch engine talks to the document store and the push transport
// through these interfaces; the Mongo repositories and the push client are
// the production implementations.

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error)
	FindParentByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByRoles(ctx context.Context, roles []string) ([]*auth.User, error)
}

type StudentStore interface {
	FindStudentsByAgeGroup(ctx context.Context, ageGroup string) ([]*Student, error)
}

type RecordStore interface {
	SaveNotifications(ctx context.Context, records []*NotificationRecord) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*NotificationRecord, error)
}

type PushSender interface {
	SendEach(ctx context.Context, messages []*config.PushMessage) (*config.PushReport, error)
}
