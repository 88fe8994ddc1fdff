package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenda/database/repository"
	"agenda/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// slotLock is professionals/{id}/slotLocks/{date}_{time}. It exists exactly
// while a confirmed appointment holds the slot, so creating it is the CAS.
type slotLock struct {
	AppointmentID string    `firestore:"appointmentId"`
	CreatedAt     time.Time `firestore:"createdAt"`
}

type firestoreAppointmentRepo struct {
	client *firestore.Client
}

// NewFirestoreAppointmentRepo stores appointments under
// professionals/{id}/appointments, the layout the booking widget always used.
func NewFirestoreAppointmentRepo(client *firestore.Client) AppointmentRepository {
	return &firestoreAppointmentRepo{client: client}
}

func (r *firestoreAppointmentRepo) appointments(professionalID string) *firestore.CollectionRef {
	return r.client.Collection("professionals").Doc(professionalID).Collection("appointments")
}

func (r *firestoreAppointmentRepo) locks(professionalID string) *firestore.CollectionRef {
	return r.client.Collection("professionals").Doc(professionalID).Collection("slotLocks")
}

func decodeAppointment(professionalID string, snap *firestore.DocumentSnapshot) (models.Appointment, error) {
	var a models.Appointment
	if err := snap.DataTo(&a); err != nil {
		return a, fmt.Errorf("failed to decode appointment %s: %w", snap.Ref.ID, err)
	}
	a.ID = snap.Ref.ID
	if a.ProfessionalID == "" {
		a.ProfessionalID = professionalID
	}
	return a, nil
}

func decodeAll(professionalID string, docs []*firestore.DocumentSnapshot) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0, len(docs))
	for _, d := range docs {
		a, err := decodeAppointment(professionalID, d)
		if err != nil {
			return nil, err
		}
		// status is filtered here so range queries need no composite index
		if a.IsConfirmed() {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r *firestoreAppointmentRepo) rangeQuery(professionalID string, rng repository.DateRange) firestore.Query {
	return r.appointments(professionalID).
		Where("date", ">=", rng.From).
		Where("date", "<=", rng.To)
}

func (r *firestoreAppointmentRepo) slotQuery(professionalID, date, slot string) firestore.Query {
	return r.appointments(professionalID).
		Where("date", "==", date).
		Where("time", "==", slot).
		Where("status", "==", models.StatusConfirmed).
		Limit(1)
}

func (r *firestoreAppointmentRepo) GetByID(ctx context.Context, professionalID, id string) (*models.Appointment, error) {
	snap, err := r.appointments(professionalID).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment %s: %w", id, err)
	}
	a, err := decodeAppointment(professionalID, snap)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *firestoreAppointmentRepo) ListByDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error) {
	docs, err := r.appointments(professionalID).Where("date", "==", date).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for %s: %w", date, err)
	}
	return decodeAll(professionalID, docs)
}

func (r *firestoreAppointmentRepo) ListRange(ctx context.Context, professionalID string, rng repository.DateRange) ([]models.Appointment, error) {
	docs, err := r.rangeQuery(professionalID, rng).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments %s..%s: %w", rng.From, rng.To, err)
	}
	return decodeAll(professionalID, docs)
}

// claimSlot runs inside a transaction: it fails with ErrSlotTaken when the
// lock exists or when an appointment written without a lock holds the slot.
func (r *firestoreAppointmentRepo) claimSlot(tx *firestore.Transaction, professionalID, date, slot, appointmentID string) error {
	lockRef := r.locks(professionalID).Doc(models.BlockID(date, slot))
	snap, err := tx.Get(lockRef)
	switch {
	case err == nil && snap.Exists():
		var lock slotLock
		if err := snap.DataTo(&lock); err == nil && lock.AppointmentID == appointmentID {
			return nil
		}
		return repository.ErrSlotTaken
	case err != nil && status.Code(err) != codes.NotFound:
		return err
	}

	it := tx.Documents(r.slotQuery(professionalID, date, slot))
	defer it.Stop()
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		if doc.Ref.ID != appointmentID {
			return repository.ErrSlotTaken
		}
	}

	return tx.Create(lockRef, slotLock{AppointmentID: appointmentID, CreatedAt: time.Now()})
}

func (r *firestoreAppointmentRepo) CreateConfirmed(ctx context.Context, appt *models.Appointment) error {
	appt.Status = models.StatusConfirmed
	ref := r.appointments(appt.ProfessionalID).Doc(appt.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.claimSlot(tx, appt.ProfessionalID, appt.Date, appt.Time, appt.ID); err != nil {
			return err
		}
		return tx.Create(ref, appt)
	})
	return mapTxError(err, "create appointment")
}

func (r *firestoreAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	ref := r.appointments(appt.ProfessionalID).Doc(appt.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := decodeAppointment(appt.ProfessionalID, snap)
		if err != nil {
			return err
		}
		moved := current.Date != appt.Date || current.Time != appt.Time
		if current.IsConfirmed() && moved {
			if err := r.claimSlot(tx, appt.ProfessionalID, appt.Date, appt.Time, appt.ID); err != nil {
				return err
			}
			if err := tx.Delete(r.locks(appt.ProfessionalID).Doc(models.BlockID(current.Date, current.Time))); err != nil {
				return err
			}
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "date", Value: appt.Date},
			{Path: "time", Value: appt.Time},
			{Path: "patientName", Value: appt.PatientName},
			{Path: "patientPhone", Value: appt.PatientPhone},
			{Path: "patientEmail", Value: appt.PatientEmail},
			{Path: "patientRut", Value: appt.PatientRut},
			{Path: "notes", Value: appt.Notes},
			{Path: "updatedAt", Value: appt.UpdatedAt},
		})
	})
	return mapTxError(err, "update appointment")
}

func (r *firestoreAppointmentRepo) Cancel(ctx context.Context, professionalID, id string, at time.Time) error {
	ref := r.appointments(professionalID).Doc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := decodeAppointment(professionalID, snap)
		if err != nil {
			return err
		}
		if current.IsConfirmed() {
			lockRef := r.locks(professionalID).Doc(models.BlockID(current.Date, current.Time))
			lockSnap, err := tx.Get(lockRef)
			if err != nil && status.Code(err) != codes.NotFound {
				return err
			}
			if err == nil && lockSnap.Exists() {
				var lock slotLock
				if lockSnap.DataTo(&lock) == nil && lock.AppointmentID == id {
					if err := tx.Delete(lockRef); err != nil {
						return err
					}
				}
			}
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: models.StatusCancelled},
			{Path: "cancelledAt", Value: at},
			{Path: "updatedAt", Value: at},
		})
	})
	return mapTxError(err, "cancel appointment")
}

func (r *firestoreAppointmentRepo) DeleteAll(ctx context.Context, professionalID string) error {
	for _, coll := range []*firestore.CollectionRef{r.appointments(professionalID), r.locks(professionalID)} {
		if err := repository.DeleteCollection(ctx, r.client, coll); err != nil {
			return fmt.Errorf("failed to delete appointments of %s: %w", professionalID, err)
		}
	}
	return nil
}

// Watch listens on the range query; every snapshot carries the full result set.
func (r *firestoreAppointmentRepo) Watch(ctx context.Context, professionalID string, rng repository.DateRange, fn func([]models.Appointment, error)) (repository.Subscription, error) {
	return repository.WatchFirestore(ctx, r.rangeQuery(professionalID, rng), func(docs []*firestore.DocumentSnapshot) ([]models.Appointment, error) {
		return decodeAll(professionalID, docs)
	}, fn), nil
}

func mapTxError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSlotTaken), status.Code(err) == codes.AlreadyExists:
		return repository.ErrSlotTaken
	case status.Code(err) == codes.NotFound:
		return repository.ErrNotFound
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
