package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// WatchFirestore listens on q and hands every decoded snapshot to fn. The
// iterator is stopped by the watch goroutine itself, never concurrently
// with Next.
func WatchFirestore[T any](ctx context.Context, q firestore.Query, decode func([]*firestore.DocumentSnapshot) ([]T, error), fn func([]T, error)) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	it := q.Snapshots(ctx)

	go func() {
		defer close(done)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				fn(nil, err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, err)
				return
			}
			items, err := decode(docs)
			fn(items, err)
			if err != nil {
				return
			}
		}
	}()

	return NewSubscription(cancel, done, nil)
}

// DeleteQuery deletes every document q matches with a BulkWriter and
// returns how many were removed.
func DeleteQuery(ctx context.Context, client *firestore.Client, q firestore.Query) (int, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	bw := client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			bw.End()
			return 0, err
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return 0, fmt.Errorf("bulk delete: %w", err)
		}
	}
	return len(jobs), nil
}

// DeleteCollection removes every document of coll.
func DeleteCollection(ctx context.Context, client *firestore.Client, coll *firestore.CollectionRef) error {
	_, err := DeleteQuery(ctx, client, coll.Query)
	return err
}
