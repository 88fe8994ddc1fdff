package repository

import (
	"context"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoKey is the _id of per-professional documents. The prefix lets change
// streams filter on documentKey, which delete events still carry.
func MongoKey(professionalID, id string) string {
	return professionalID + "/" + id
}

// WatchMongoKeys forwards change events on documents keyed "{professionalID}/..."
// as signals. streamErr reports why the stream ended, if it failed.
func WatchMongoKeys(ctx context.Context, coll *mongo.Collection, professionalID string) (<-chan struct{}, func(), func() error, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"documentKey._id": bson.M{"$regex": "^" + regexp.QuoteMeta(professionalID+"/")},
		}}},
	}
	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := coll.Watch(streamCtx, pipeline)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}

	var (
		mu      sync.Mutex
		failure error
	)
	changes := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			mu.Lock()
			failure = err
			mu.Unlock()
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}()

	stop := func() {
		cancel()
		<-done
	}
	streamErr := func() error {
		mu.Lock()
		defer mu.Unlock()
		return failure
	}
	return changes, stop, streamErr, nil
}
