package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// appointmentDoc prefixes the document key with the professional so change
// streams can be filtered on documentKey, which deletes still carry.
type appointmentDoc struct {
	Key                string `bson:"_id"`
	models.Appointment `bson:",inline"`
}

func docKey(professionalID, id string) string {
	return repository.MongoKey(professionalID, id)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a MongoDB AppointmentRepository. The
// slot CAS relies on the partial unique index created by EnsureIndexes.
func NewMongoAppointmentRepo(db *mongo.Database) AppointmentRepository {
	return &mongoAppointmentRepo{coll: db.Collection("appointments")}
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, professionalID, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc appointmentDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": docKey(professionalID, id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment %s: %w", id, err)
	}
	return &doc.Appointment, nil
}

func (r *mongoAppointmentRepo) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []appointmentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Appointment)
	}
	return out, nil
}

func (r *mongoAppointmentRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error) {
	appts, err := r.find(ctx, bson.M{
		"professionalId": professionalID,
		"date":           date,
		"status":         models.StatusConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for %s: %w", date, err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) ListRange(ctx context.Context, professionalID string, rng repository.DateRange) ([]models.Appointment, error) {
	appts, err := r.find(ctx, bson.M{
		"professionalId": professionalID,
		"date":           bson.M{"$gte": rng.From, "$lte": rng.To},
		"status":         models.StatusConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments %s..%s: %w", rng.From, rng.To, err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) CreateConfirmed(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	appt.Status = models.StatusConfirmed
	doc := appointmentDoc{Key: docKey(appt.ProfessionalID, appt.ID), Appointment: *appt}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"date":         appt.Date,
		"time":         appt.Time,
		"patientName":  appt.PatientName,
		"patientPhone": appt.PatientPhone,
		"patientEmail": appt.PatientEmail,
		"patientRut":   appt.PatientRut,
		"notes":        appt.Notes,
		"updatedAt":    appt.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": docKey(appt.ProfessionalID, appt.ID)}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to update appointment %s: %w", appt.ID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepo) Cancel(ctx context.Context, professionalID, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      models.StatusCancelled,
		"cancelledAt": at,
		"updatedAt":   at,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": docKey(professionalID, id)}, update)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepo) DeleteAll(ctx context.Context, professionalID string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"professionalId": professionalID}); err != nil {
		return fmt.Errorf("failed to delete appointments of %s: %w", professionalID, err)
	}
	return nil
}

// Watch opens a change stream (replica set required) scoped to the
// professional and re-runs the range query on every event.
func (r *mongoAppointmentRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Appointment, error)) (repository.Subscription, error) {
	changes, stop, streamErr, err := repository.WatchMongoKeys(ctx, r.coll, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch appointments of %s: %w", professionalID, err)
	}
	load := func(ctx context.Context) ([]models.Appointment, error) {
		if err := streamErr(); err != nil {
			return nil, err
		}
		return r.ListRange(ctx, professionalID, rng)
	}
	return repository.WatchLoop(ctx, changes, load, fn, stop), nil
}
