package notification

import (
	"context"
	"log"

	"AcademyNotify/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudienceResolver turns a triggering event into the set of users to notify.
type AudienceResolver struct {
	users    UserStore
	students StudentStore
}

func NewAudienceResolver(users UserStore, students StudentStore) *AudienceResolver {
	return &AudienceResolver{users: users, students: students}
}

// ResolveSessionAudience collects the session's coaches plus one parent user
// per distinct parent email among students of the session's age group. The
// result is deduplicated by user id. A failed student or parent lookup only
// shrinks the audience; it never fails the dispatch.
func (r *AudienceResolver) ResolveSessionAudience(ctx context.Context, session *Session) []Recipient {
	var recipients []Recipient
	seen := make(map[primitive.ObjectID]bool)
	add := func(id primitive.ObjectID, role string) {
		if id.IsZero() || seen[id] {
			return
		}
		seen[id] = true
		recipients = append(recipients, Recipient{UserID: id, Role: role})
	}

	add(session.LeadCoachID, auth.RoleCoach)
	add(session.AssistantCoachID, auth.RoleCoach)

	if session.AgeGroup == "" {
		return recipients
	}

	students, err := r.students.FindStudentsByAgeGroup(ctx, session.AgeGroup)
	if err != nil {
		log.Println("Error fetching students for age group", session.AgeGroup, ":", err)
		return recipients
	}

	seenEmails := make(map[string]bool)
	var parentEmails []string
	for _, student := range students {
		if student.ParentEmail == "" || seenEmails[student.ParentEmail] {
			continue
		}
		seenEmails[student.ParentEmail] = true
		parentEmails = append(parentEmails, student.ParentEmail)
	}
	log.Printf("Found %d parent emails for age group %s", len(parentEmails), session.AgeGroup)

	for _, email := range parentEmails {
		parent, err := r.users.FindParentByEmail(ctx, email)
		if err != nil {
			log.Println("Error looking up parent user for", email, ":", err)
			continue
		}
		if parent == nil {
			continue
		}
		add(parent.ID, TargetRoleParent)
	}

	return recipients
}

// ResolveBroadcastAudience returns every user matching the target audience
// tag, device token or not. An unrecognized tag fails before any store query.
func (r *AudienceResolver) ResolveBroadcastAudience(ctx context.Context, targetAudience string) ([]*auth.User, error) {
	var roles []string
	switch targetAudience {
	case AudienceAllCoaches:
		roles = []string{auth.RoleCoach}
	case AudienceAllParents:
		roles = []string{auth.RoleParent}
	case AudienceEveryone:
		roles = []string{auth.RoleCoach, auth.RoleParent}
	default:
		return nil, ErrInvalidAudience
	}
	return r.users.FindByRoles(ctx, roles)
}
