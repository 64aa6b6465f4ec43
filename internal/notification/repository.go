package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles DB operations for notifications and the
// student lookups audience resolution needs.
type NotificationRepository struct {
	notificationsCollection *mongo.Collection
	studentsCollection      *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		notificationsCollection: db.Collection("notifications"),
		studentsCollection:      db.Collection("students"),
	}
}

// SaveNotifications writes all records of a dispatch in a single batch.
// An empty batch is a no-op, not an error.
func (r *NotificationRepository) SaveNotifications(ctx context.Context, records []*NotificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		docs = append(docs, record)
	}
	_, err := r.notificationsCollection.InsertMany(ctx, docs)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*NotificationRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.notificationsCollection.Find(ctx, bson.M{"target_user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var records []*NotificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *NotificationRepository) FindStudentsByAgeGroup(ctx context.Context, ageGroup string) ([]*Student, error) {
	cursor, err := r.studentsCollection.Find(ctx, bson.M{"age_group": ageGroup})
	if err != nil {
		return nil, err
	}
	var students []*Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}
