package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agenda/database/repository"
	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/services/schedule"
	"agenda/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu        sync.Mutex
	bookings  []models.Appointment
	reminders []models.Appointment
}

func (r *recordingEnqueuer) EnqueueBooking(_ context.Context, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, appt)
	return nil
}

func (r *recordingEnqueuer) EnqueueReminder(_ context.Context, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders = append(r.reminders, appt)
	return nil
}

type fixture struct {
	svc      *DefaultBookingService
	pros     professionalRepo.ProfessionalRepository
	blocks   blockRepo.BlockRepository
	enqueuer *recordingEnqueuer
}

var today = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	pros := professionalRepo.NewMemoryProfessionalRepo()
	require.NoError(t, pros.Create(context.Background(), &models.Professional{
		ID:    "dra-perez",
		Name:  "Dra. Pérez",
		Phone: "912345678",
		Settings: models.ScheduleConfig{
			StartTime:    "09:00",
			EndTime:      "18:00",
			LunchStart:   "13:00",
			LunchEnd:     "14:00",
			SlotInterval: 45,
		},
		Services: []models.Service{{Name: "Consulta", Duration: 45}},
	}))

	blocks := blockRepo.NewMemoryBlockRepo()
	enq := &recordingEnqueuer{}
	return &fixture{
		svc: &DefaultBookingService{
			Professionals: pros,
			Appointments:  appointmentRepo.NewMemoryAppointmentRepo(),
			Blocks:        blocks,
			Cache:         utils.NewProfessionalCache(client, time.Minute),
			Tasks:         enq,
			PhoneRegion:   "CL",
			Now:           func() time.Time { return today },
		},
		pros:     pros,
		blocks:   blocks,
		enqueuer: enq,
	}
}

func request(slot string) models.BookingRequest {
	return models.BookingRequest{
		Date:         "2025-06-03",
		Time:         slot,
		ServiceName:  "Consulta",
		PatientName:  "Pedro Soto",
		PatientPhone: "987 654 321",
		PatientEmail: "pedro@example.com",
		PatientRut:   "12.345.678-5",
	}
}

func TestBook_Confirms(t *testing.T) {
	f := newFixture(t)
	conf, err := f.svc.Book(context.Background(), "dra-perez", request("09:45"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, conf.Appointment.Status)
	assert.Equal(t, "987654321", conf.Appointment.PatientPhone)
	assert.Equal(t, 45, conf.Appointment.ServiceDuration)
	assert.Equal(t, "Dra. Pérez", conf.Professional)
	assert.Contains(t, conf.WhatsAppURL, "https://wa.me/56912345678?text=")
	require.Len(t, f.enqueuer.bookings, 1)
	assert.Equal(t, conf.Appointment.ID, f.enqueuer.bookings[0].ID)

	slots, err := f.svc.Availability(context.Background(), "dra-perez", "2025-06-03")
	require.NoError(t, err)
	for _, s := range slots {
		if s.Time == "09:45" {
			assert.False(t, s.Available)
		}
	}
}

func TestBook_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Book(ctx, "dra-perez", request("09:45"))
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, "dra-perez", request("09:45"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.True(t, IsConflict(err))

	b := models.NewBlock("dra-perez", "2025-06-03", "10:30")
	require.NoError(t, f.blocks.Put(ctx, &b))
	_, err = f.svc.Book(ctx, "dra-perez", request("10:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.svc.Book(ctx, "dra-perez", request("13:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable, "lunch is outside business hours")

	assert.Len(t, f.enqueuer.bookings, 1)
}

func TestBook_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)

	const clients = 10
	results := make(chan error, clients)
	var wg sync.WaitGroup
	for range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), "dra-perez", request("11:15"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, ErrSlotTaken), "loser got %v", err)
	}
	assert.Equal(t, 1, wins)

	appts, err := f.svc.Appointments.ListByDate(context.Background(), "dra-perez", "2025-06-03")
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestBook_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*models.BookingRequest)
		field string
	}{
		{"bad rut", func(r *models.BookingRequest) { r.PatientRut = "12.345.678-9" }, "patientRut"},
		{"short phone", func(r *models.BookingRequest) { r.PatientPhone = "1234" }, "patientPhone"},
		{"bad email", func(r *models.BookingRequest) { r.PatientEmail = "pedro@" }, "patientEmail"},
		{"no name", func(r *models.BookingRequest) { r.PatientName = "  " }, "patientName"},
		{"unknown service", func(r *models.BookingRequest) { r.ServiceName = "Cirugía" }, "serviceName"},
		{"past date", func(r *models.BookingRequest) { r.Date = "2025-06-01" }, "date"},
		{"off grid", func(r *models.BookingRequest) { r.Time = "09:10" }, "time"},
		{"bad date", func(r *models.BookingRequest) { r.Date = "2025-02-30" }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := request("09:45")
			tt.edit(&req)

			_, err := f.svc.Book(context.Background(), "dra-perez", req)
			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, f.enqueuer.bookings)
		})
	}
}

func TestBook_TrimsEmailBeforeValidating(t *testing.T) {
	f := newFixture(t)
	req := request("15:00")
	req.PatientEmail = " ana@x.cl "
	req.PatientRut = " " + req.PatientRut + " "
	conf, err := f.svc.Book(context.Background(), "dra-perez", req)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.cl", conf.Appointment.PatientEmail)
}

func TestBook_OptionalRutAndEmail(t *testing.T) {
	f := newFixture(t)
	req := request("15:00")
	req.PatientRut, req.PatientEmail = "", ""
	_, err := f.svc.Book(context.Background(), "dra-perez", req)
	assert.NoError(t, err)
}

func TestAvailability_HidesOutsideHours(t *testing.T) {
	f := newFixture(t)
	slots, err := f.svc.Availability(context.Background(), "dra-perez", "2025-06-03")
	require.NoError(t, err)

	var times []string
	for _, s := range slots {
		times = append(times, s.Time)
		assert.True(t, s.Available)
	}
	assert.Equal(t, []string{"09:00", "09:45", "10:30", "11:15", "12:00", "12:45", "14:15", "15:00", "15:45", "16:30", "17:15", "18:00"}, times)
}

func TestAvailability_WholeDayBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := models.NewBlock("dra-perez", "2025-06-03", models.AllDay)
	require.NoError(t, f.blocks.Put(ctx, &b))

	slots, err := f.svc.Availability(ctx, "dra-perez", "2025-06-03")
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.False(t, s.Available, s.Time)
	}
}

func TestGetProfessional(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetProfessional(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfessionalNotFound)

	p, err := f.svc.GetProfessional(ctx, "dra-perez")
	require.NoError(t, err)
	assert.Equal(t, "Dra. Pérez", p.Name)

	require.NoError(t, f.pros.Delete(ctx, "dra-perez"))
	cached, err := f.svc.GetProfessional(ctx, "dra-perez")
	require.NoError(t, err, "served from the profile cache")
	assert.Equal(t, 45, cached.Settings.Interval())

	f.svc.Cache.Invalidate(ctx, "dra-perez")
	_, err = f.svc.GetProfessional(ctx, "dra-perez")
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}

func TestGuard_MoveIgnoresItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	conf, err := f.svc.Book(ctx, "dra-perez", request("09:45"))
	require.NoError(t, err)
	pro, err := f.pros.GetByID(ctx, "dra-perez")
	require.NoError(t, err)

	g := NewGuard(f.svc.Appointments, f.svc.Blocks)
	assert.NoError(t, g.Check(ctx, pro, "2025-06-03", "09:45", conf.Appointment.ID))
	assert.ErrorIs(t, g.Check(ctx, pro, "2025-06-03", "09:45", ""), ErrSlotTaken)

	moved := conf.Appointment
	moved.Time = "10:30"
	require.NoError(t, g.Move(ctx, pro, &moved))

	snap, err := LoadDay(ctx, f.svc.Appointments, f.svc.Blocks, "dra-perez", "2025-06-03")
	require.NoError(t, err)
	assert.Equal(t, schedule.Free, schedule.Classify("09:45", pro.Settings, snap))
	assert.Equal(t, schedule.Occupied, schedule.Classify("10:30", pro.Settings, snap))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(repository.ErrSlotTaken))
	assert.False(t, IsConflict(ErrProfessionalNotFound))
}
