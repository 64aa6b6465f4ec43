package notification

import (
	"context"
	"errors"
	"testing"

	"AcademyNotify/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveSessionAudienceDedupesParentsByEmail(t *testing.T) {
	parentA := testUser(auth.RoleParent, "")
	parentB := testUser(auth.RoleParent, "")
	users := &stubUserStore{parentsByEmail: map[string]*auth.User{
		"a@example.com": parentA,
		"b@example.com": parentB,
	}}
	students := &stubStudentStore{students: []*Student{
		{AgeGroup: "U10", ParentEmail: "a@example.com"},
		{AgeGroup: "U10", ParentEmail: "a@example.com"},
		{AgeGroup: "U10", ParentEmail: "b@example.com"},
		{AgeGroup: "U10", ParentEmail: ""},
	}}
	resolver := NewAudienceResolver(users, students)

	lead := primitive.NewObjectID()
	recipients := resolver.ResolveSessionAudience(context.Background(), &Session{
		LeadCoachID: lead,
		AgeGroup:    "U10",
	})

	if got := len(recipients); got != 3 {
		t.Fatalf("expected 3 recipients, got %d", got)
	}
	if recipients[0].UserID != lead || recipients[0].Role != auth.RoleCoach {
		t.Fatalf("expected lead coach first, got %+v", recipients[0])
	}
	if recipients[1].UserID != parentA.ID || recipients[2].UserID != parentB.ID {
		t.Fatalf("expected one parent per distinct email, got %+v", recipients[1:])
	}
	if recipients[1].Role != TargetRoleParent {
		t.Fatalf("expected parent role tag %q, got %q", TargetRoleParent, recipients[1].Role)
	}
	if got := len(users.parentLookups); got != 2 {
		t.Fatalf("expected 2 parent lookups, got %d: %v", got, users.parentLookups)
	}
}

func TestResolveSessionAudienceWithoutAgeGroupSkipsParentLookup(t *testing.T) {
	users := &stubUserStore{}
	students := &stubStudentStore{}
	resolver := NewAudienceResolver(users, students)

	lead := primitive.NewObjectID()
	assistant := primitive.NewObjectID()
	recipients := resolver.ResolveSessionAudience(context.Background(), &Session{
		LeadCoachID:      lead,
		AssistantCoachID: assistant,
	})

	if got := len(recipients); got != 2 {
		t.Fatalf("expected coaches only, got %d recipients", got)
	}
	if students.queries != 0 {
		t.Fatalf("expected no student query, got %d", students.queries)
	}
}

func TestResolveSessionAudienceDegradesWhenStudentQueryFails(t *testing.T) {
	users := &stubUserStore{}
	students := &stubStudentStore{err: errors.New("store down")}
	resolver := NewAudienceResolver(users, students)

	lead := primitive.NewObjectID()
	recipients := resolver.ResolveSessionAudience(context.Background(), &Session{
		LeadCoachID: lead,
		AgeGroup:    "U10",
	})

	if got := len(recipients); got != 1 {
		t.Fatalf("expected coach-only degradation, got %d recipients", got)
	}
	if recipients[0].UserID != lead {
		t.Fatalf("expected lead coach, got %+v", recipients[0])
	}
}

func TestResolveSessionAudienceDedupesCoachIDs(t *testing.T) {
	resolver := NewAudienceResolver(&stubUserStore{}, &stubStudentStore{})

	coach := primitive.NewObjectID()
	recipients := resolver.ResolveSessionAudience(context.Background(), &Session{
		LeadCoachID:      coach,
		AssistantCoachID: coach,
	})

	if got := len(recipients); got != 1 {
		t.Fatalf("expected same coach once, got %d recipients", got)
	}
}

func TestResolveSessionAudienceIgnoresUnmatchedParentEmails(t *testing.T) {
	users := &stubUserStore{parentsByEmail: map[string]*auth.User{}}
	students := &stubStudentStore{students: []*Student{
		{AgeGroup: "U12", ParentEmail: "nobody@example.com"},
	}}
	resolver := NewAudienceResolver(users, students)

	recipients := resolver.ResolveSessionAudience(context.Background(), &Session{
		LeadCoachID: primitive.NewObjectID(),
		AgeGroup:    "U12",
	})

	if got := len(recipients); got != 1 {
		t.Fatalf("expected the unmatched email to be skipped, got %d recipients", got)
	}
}

func TestResolveBroadcastAudienceByTag(t *testing.T) {
	coach := testUser(auth.RoleCoach, "tok-1")
	parent := testUser(auth.RoleParent, "")
	users := &stubUserStore{usersByRole: map[string][]*auth.User{
		auth.RoleCoach:  {coach},
		auth.RoleParent: {parent},
	}}
	resolver := NewAudienceResolver(users, &stubStudentStore{})

	tests := []struct {
		audience string
		want     []*auth.User
	}{
		{AudienceAllCoaches, []*auth.User{coach}},
		{AudienceAllParents, []*auth.User{parent}},
		{AudienceEveryone, []*auth.User{coach, parent}},
	}
	for _, tt := range tests {
		got, err := resolver.ResolveBroadcastAudience(context.Background(), tt.audience)
		if err != nil {
			t.Fatalf("%s: %v", tt.audience, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %d users, got %d", tt.audience, len(tt.want), len(got))
		}
		for i := range got {
			if got[i].ID != tt.want[i].ID {
				t.Fatalf("%s: unexpected user at %d", tt.audience, i)
			}
		}
	}
}

func TestResolveBroadcastAudienceRejectsUnknownTag(t *testing.T) {
	users := &stubUserStore{}
	resolver := NewAudienceResolver(users, &stubStudentStore{})

	_, err := resolver.ResolveBroadcastAudience(context.Background(), "some_invalid_tag")
	if !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
	if users.roleQueries != 0 {
		t.Fatalf("expected no store query for invalid tag, got %d", users.roleQueries)
	}
}
