package notification

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

// SessionWatcher consumes the change stream of session inserts and triggers
// one dispatch per new session. Delivery is at-most-effort: duplicate or
// missed triggers are an infrastructure concern, and failures surface only
// in the logs.
type SessionWatcher struct {
	sessions *mongo.Collection
	service  *NotificationService
}

func NewSessionWatcher(db *mongo.Database, service *NotificationService) *SessionWatcher {
	return &SessionWatcher{sessions: db.Collection("sessions"), service: service}
}

type sessionInsertEvent struct {
	FullDocument Session `bson:"fullDocument"`
}

// Start registers the change-stream loop on the fx lifecycle.
func (w *SessionWatcher) Start(lc fx.Lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			pipeline := mongo.Pipeline{
				bson.D{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
			}
			stream, err := w.sessions.Watch(ctx, pipeline)
			if err != nil {
				cancel()
				return err
			}
			log.Println("Watching sessions collection for new sessions...")
			go func() {
				defer close(done)
				defer stream.Close(context.Background())
				for stream.Next(ctx) {
					var event sessionInsertEvent
					if err := stream.Decode(&event); err != nil {
						log.Println("Error decoding session event:", err)
						continue
					}
					w.service.DispatchSessionCreated(ctx, &event.FullDocument)
				}
				if err := stream.Err(); err != nil && ctx.Err() == nil {
					log.Println("Session change stream closed:", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			log.Println("Stopping session watcher...")
			cancel()
			<-done
			return nil
		},
	})
}
