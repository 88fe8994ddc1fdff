package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agenda/database"
	"agenda/handlers"
	"agenda/services/admin"
	"agenda/services/booking"
	"agenda/services/schedule"
	"agenda/services/setup"
	"agenda/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var clock = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

const bookingDate = "2026-03-03"

type testEnv struct {
	router *gin.Engine
	store  *database.Store
}

func newTestEnv(t *testing.T, health map[string]utils.Pinger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.RegisterBindingValidators()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := database.NewMemoryStore()
	cache := utils.NewProfessionalCache(client, time.Minute)
	reg := prometheus.NewRegistry()
	metrics := utils.NewMetrics(reg)
	now := func() time.Time { return clock }

	bookingSvc := &booking.DefaultBookingService{
		Professionals: store.Professionals,
		Appointments:  store.Appointments,
		Blocks:        store.Blocks,
		Cache:         cache,
		Metrics:       metrics,
		Location:      time.UTC,
		Now:           now,
	}
	adminSvc := &admin.DefaultAdminService{
		Professionals: store.Professionals,
		Appointments:  store.Appointments,
		Blocks:        store.Blocks,
		Cache:         cache,
		Metrics:       metrics,
		Now:           now,
	}
	setupSvc := &setup.DefaultSetupService{
		Professionals: store.Professionals,
		Appointments:  store.Appointments,
		Blocks:        store.Blocks,
		Sessions:      utils.NewSessionStore(client, time.Hour),
		Cache:         cache,
		HashCost:      bcrypt.MinCost,
	}

	if health == nil {
		health = map[string]utils.Pinger{"store": store}
	}
	r := gin.New()
	hb := handlers.NewHandlerBundle(bookingSvc, adminSvc, setupSvc, time.UTC, now, []string{"*"})
	RegisterRoutes(r, hb, Options{
		AllowedOrigins:      []string{"*"},
		RequestsPerMin:      1000,
		LoginRequestsPerMin: 1000,
		Health:              health,
		Metrics:             promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &testEnv{router: r, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *testEnv) login(t *testing.T, path, pin string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, path, "", gin.H{"pin": pin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	decode(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

// seedProfessional creates dra-rojas through the setup screen and logs into the admin panel.
func (e *testEnv) seedProfessional(t *testing.T) (masterToken, adminToken string) {
	t.Helper()
	masterToken = e.login(t, "/api/setup/login", "0000")
	w := e.do(t, http.MethodPost, "/api/setup/professionals", masterToken, gin.H{
		"id": "dra-rojas", "name": "Dra. Rojas", "phone": "912345678", "email": "rojas@example.com", "pin": "2468",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	adminToken = e.login(t, "/api/pros/dra-rojas/admin/login", "2468")
	return masterToken, adminToken
}

func bookingBody(slot string) gin.H {
	return gin.H{"date": bookingDate, "time": slot, "patientName": "Ana Soto", "patientPhone": "987654321"}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, map[string]utils.Pinger{
		"store": utils.PingerFunc(func(context.Context) error { return nil }),
		"redis": utils.PingerFunc(func(context.Context) error { return errors.New("down") }),
	})

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var status utils.HealthStatus
	decode(t, w, &status)
	assert.True(t, status.Services["store"])
	assert.False(t, status.Services["redis"])

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agenda_live_sessions")
}

func TestPublicBookingFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedProfessional(t)

	w := env.do(t, http.MethodGet, "/api/pros/dra-rojas", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "pinHash")
	assert.Contains(t, w.Body.String(), `"name":"Dra. Rojas"`)

	w = env.do(t, http.MethodGet, "/api/pros/nadie", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/pros/dra-rojas/appointments", "", bookingBody("09:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "wa.me/56912345678")

	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas/availability?date="+bookingDate, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail struct {
		Slots []schedule.BookableSlot `json:"slots"`
	}
	decode(t, w, &avail)
	require.NotEmpty(t, avail.Slots)
	assert.Equal(t, "06:00", avail.Slots[0].Time)
	for _, s := range avail.Slots {
		if s.Time == "09:00" {
			assert.False(t, s.Available)
		}
	}

	// the second patient loses the slot and gets the refreshed day back
	w = env.do(t, http.MethodPost, "/api/pros/dra-rojas/appointments", "", bookingBody("09:00"))
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	var conflict struct {
		Error string                  `json:"error"`
		Slots []schedule.BookableSlot `json:"slots"`
	}
	decode(t, w, &conflict)
	assert.NotEmpty(t, conflict.Error)
	assert.Len(t, conflict.Slots, len(avail.Slots))
}

func TestBookingValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedProfessional(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing time", gin.H{"date": bookingDate, "patientName": "Ana", "patientPhone": "987654321"}},
		{"bad date", gin.H{"date": "03-03-2026", "time": "09:00", "patientName": "Ana", "patientPhone": "987654321"}},
		{"off grid", bookingBody("09:10")},
		{"short phone", gin.H{"date": bookingDate, "time": "09:00", "patientName": "Ana", "patientPhone": "1234"}},
		{"past date", gin.H{"date": "2026-03-01", "time": "09:00", "patientName": "Ana", "patientPhone": "987654321"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/pros/dra-rojas/appointments", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestAdminRoutesRequireOwnSession(t *testing.T) {
	env := newTestEnv(t, nil)
	masterToken, adminToken := env.seedProfessional(t)

	w := env.do(t, http.MethodGet, "/api/pros/dra-rojas/admin/day?date="+bookingDate, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas/admin/day?date="+bookingDate, masterToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/pros/otra/admin/day?date="+bookingDate, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/pros/dra-rojas/admin/login", "", gin.H{"pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/pros/dra-rojas/admin/logout", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas/admin/settings", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminPanelFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.seedProfessional(t)
	base := "/api/pros/dra-rojas/admin"

	w := env.do(t, http.MethodPut, base+"/settings", token, gin.H{"settings": gin.H{
		"startTime": "09:00", "endTime": "18:00", "lunchStart": "13:00", "lunchEnd": "14:00", "slotInterval": 45,
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPut, base+"/settings", token, gin.H{"settings": gin.H{"startTime": "18:00", "endTime": "09:00"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, base+"/services", token, gin.H{"services": []gin.H{{"name": "Control", "duration": 30}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/pros/dra-rojas/appointments", "", gin.H{
		"date": bookingDate, "time": "09:45", "serviceName": "Control", "patientName": "Luis Díaz", "patientPhone": "987654321",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var confirmation struct {
		Appointment struct {
			ID string `json:"id"`
		} `json:"appointment"`
	}
	decode(t, w, &confirmation)
	apptID := confirmation.Appointment.ID

	w = env.do(t, http.MethodPost, base+"/blocks/toggle", token, gin.H{"date": bookingDate, "time": "10:30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"action":"blocked"`)

	w = env.do(t, http.MethodPost, base+"/blocks/toggle", token, gin.H{"date": bookingDate, "time": "09:45"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"action":"blocked"`)

	w = env.do(t, http.MethodPost, base+"/blocks/toggle", token, gin.H{"date": bookingDate, "time": "06:00"})
	assert.Equal(t, http.StatusConflict, w.Code, "outside hours slots are not togglable")

	w = env.do(t, http.MethodGet, base+"/day?date="+bookingDate, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var day admin.DayView
	decode(t, w, &day)
	states := map[string]schedule.SlotState{}
	for _, s := range day.Slots {
		states[s.Time] = s.State
	}
	assert.Equal(t, schedule.Occupied, states["09:45"])
	assert.Equal(t, schedule.ManuallyBlocked, states["10:30"])
	assert.Equal(t, schedule.OutsideHours, states["06:00"])
	assert.Equal(t, schedule.Free, states["09:00"])
	require.Len(t, day.Appointments, 1)

	w = env.do(t, http.MethodPatch, base+"/appointments/"+apptID, token, gin.H{"time": "10:30"})
	assert.Equal(t, http.StatusConflict, w.Code, "moving onto a blocked slot")

	w = env.do(t, http.MethodPatch, base+"/appointments/"+apptID, token, gin.H{"time": "11:15", "notes": "trae exámenes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"time":"11:15"`)

	w = env.do(t, http.MethodPut, base+"/blocks/day/"+bookingDate, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, base+"/month?month=2026-03", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"`+bookingDate+`":{"appointments":1,"blocked":true}`)

	w = env.do(t, http.MethodDelete, base+"/blocks/day/"+bookingDate, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":3`)

	w = env.do(t, http.MethodGet, base+"/reminders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bucket":"tomorrow"`)

	w = env.do(t, http.MethodDelete, base+"/appointments/"+apptID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, base+"/appointments/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, base+"/profile", token, gin.H{"name": "Dra. Rojas M.", "phone": "912345678"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas", "", nil)
	assert.Contains(t, w.Body.String(), "Dra. Rojas M.")
}

func TestSetupFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	masterToken, adminToken := env.seedProfessional(t)

	w := env.do(t, http.MethodPost, "/api/setup/professionals", masterToken, gin.H{
		"id": "dra-rojas", "name": "Otra", "pin": "1111",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/setup/professionals", masterToken, gin.H{
		"id": "Mal Slug", "name": "Otra", "pin": "1111",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/setup/professionals", masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dra-rojas")

	w = env.do(t, http.MethodPut, "/api/setup/master-pin", masterToken, gin.H{"currentPin": "0000", "newPin": "5555", "confirmPin": "5556"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPut, "/api/setup/master-pin", masterToken, gin.H{"currentPin": "0000", "newPin": "5555", "confirmPin": "5555"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodGet, "/api/setup/professionals", masterToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "changing the PIN ends open sessions")
	w = env.do(t, http.MethodPost, "/api/setup/login", "", gin.H{"pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	masterToken = env.login(t, "/api/setup/login", "5555")

	w = env.do(t, http.MethodDelete, "/api/setup/professionals/dra-rojas", masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/api/pros/dra-rojas/admin/day?date="+bookingDate, adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/setup/logout", masterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/setup/professionals", masterToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hb := &handlers.HandlerBundle{
		SetupLoginHandler: func(c *gin.Context) { c.Status(http.StatusOK) },
	}
	RegisterRoutes(r, hb, Options{RequestsPerMin: 100, LoginRequestsPerMin: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/setup/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
