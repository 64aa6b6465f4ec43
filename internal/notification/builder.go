package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"AcademyNotify/internal/auth"
	"AcademyNotify/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageContent is the shared title/body/type of one dispatch; every
// recipient of the dispatch gets the same content.
type MessageContent struct {
	Title     string
	Body      string
	Type      string
	SessionID primitive.ObjectID
}

// PayloadBuilder produces the history record and, when the recipient has a
// device token, the push message for one recipient.
type PayloadBuilder struct {
	users UserStore
	loc   *time.Location
}

func NewPayloadBuilder(users UserStore, loc *time.Location) *PayloadBuilder {
	return &PayloadBuilder{users: users, loc: loc}
}

// SessionContent builds the notification wording for a newly scheduled
// session. Missing fields render as fixed placeholders rather than producing
// a malformed message.
func (b *PayloadBuilder) SessionContent(session *Session) MessageContent {
	dateString := "TBD"
	if session.StartTime != nil {
		dateString = session.StartTime.In(b.loc).Format("Mon Jan 2, 3:04 PM")
	}
	className := session.ClassName
	if className == "" {
		className = "A new class"
	}
	venue := session.Venue
	if venue == "" {
		venue = "TBD"
	}
	return MessageContent{
		Title:     "New Class Scheduled!",
		Body:      fmt.Sprintf("%s on %s at %s", className, dateString, venue),
		Type:      TypeClassScheduled,
		SessionID: session.ID,
	}
}

func BroadcastContent(title, body string) MessageContent {
	return MessageContent{Title: title, Body: body, Type: TypeBroadcast}
}

// BuildForRecipient builds the record unconditionally and looks up the
// recipient's current device token for the push message. A failed lookup is
// logged and skips the push only; the record is built from the data already
// in hand.
func (b *PayloadBuilder) BuildForRecipient(ctx context.Context, recipient Recipient, content MessageContent) (*NotificationRecord, *config.PushMessage) {
	record := b.record(recipient.UserID, recipient.Role, content)

	user, err := b.users.FindByID(ctx, recipient.UserID)
	if err != nil {
		log.Println("Error fetching user", recipient.UserID.Hex(), ":", err)
		return record, nil
	}
	if user == nil || user.FCMToken == "" {
		return record, nil
	}
	return record, b.pushMessage(user.FCMToken, content)
}

// BuildForUser builds from a user document already in hand, no extra lookup.
func (b *PayloadBuilder) BuildForUser(user *auth.User, content MessageContent) (*NotificationRecord, *config.PushMessage) {
	record := b.record(user.ID, user.Role, content)
	if user.FCMToken == "" {
		return record, nil
	}
	return record, b.pushMessage(user.FCMToken, content)
}

func (b *PayloadBuilder) record(userID primitive.ObjectID, role string, content MessageContent) *NotificationRecord {
	return &NotificationRecord{
		Title:            content.Title,
		Body:             content.Body,
		Type:             content.Type,
		TargetUserID:     userID,
		TargetRole:       role,
		RelatedSessionID: content.SessionID,
		CreatedAt:        time.Now().UTC(),
		Read:             false,
	}
}

func (b *PayloadBuilder) pushMessage(token string, content MessageContent) *config.PushMessage {
	data := map[string]string{
		"type":         content.Type,
		"click_action": "FLUTTER_NOTIFICATION_CLICK",
	}
	if !content.SessionID.IsZero() {
		data["sessionId"] = content.SessionID.Hex()
	}
	return &config.PushMessage{
		Token: token,
		Notification: config.PushNotification{
			Title: content.Title,
			Body:  content.Body,
		},
		Data: data,
		Android: config.AndroidConfig{
			Priority: "high",
			Notification: config.AndroidNotification{
				ChannelID: "high_importance_channel",
				Sound:     "default",
			},
		},
		APNS: config.APNSConfig{
			Payload: config.APNSPayload{
				Aps: config.APSPayload{Sound: "default", Badge: 1},
			},
		},
	}
}
