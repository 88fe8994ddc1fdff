package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appointmentRepo "agenda/database/repository/appointment"
	blockRepo "agenda/database/repository/block"
	professionalRepo "agenda/database/repository/professional"
	"agenda/models"
	"agenda/services/admin"
	"agenda/services/schedule"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveServer(t *testing.T) (*admin.DefaultAdminService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pros := professionalRepo.NewMemoryProfessionalRepo()
	require.NoError(t, pros.Create(context.Background(), &models.Professional{
		ID:       "dra-vega",
		Name:     "Dra. Vega",
		Settings: models.ScheduleConfig{StartTime: "09:00", EndTime: "18:00", SlotInterval: 45},
	}))
	svc := &admin.DefaultAdminService{
		Professionals: pros,
		Appointments:  appointmentRepo.NewMemoryAppointmentRepo(),
		Blocks:        blockRepo.NewMemoryBlockRepo(),
	}

	r := gin.New()
	r.GET("/api/pros/:id/admin/live", NewLiveHandler(svc, []string{"*"}).LiveHandler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads events until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(admin.LiveEvent) bool) admin.LiveEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var ev admin.LiveEvent
		require.NoError(t, conn.ReadJSON(&ev))
		if match(ev) {
			return ev
		}
	}
}

func slotState(view *admin.DayView, slot string) schedule.SlotState {
	for _, s := range view.Slots {
		if s.Time == slot {
			return s.State
		}
	}
	return -1
}

func TestLiveHandlerStreamsDay(t *testing.T) {
	svc, base := newLiveServer(t)
	conn := dial(t, base+"/api/pros/dra-vega/admin/live")

	require.NoError(t, conn.WriteJSON(gin.H{"type": "selectDate", "date": "2026-03-03"}))
	ev := readUntil(t, conn, func(ev admin.LiveEvent) bool { return ev.Type == admin.LiveEventDay })
	require.NotNil(t, ev.Day)
	assert.Equal(t, schedule.Free, slotState(ev.Day, "09:45"))

	_, err := svc.ToggleBlock(context.Background(), "dra-vega", "2026-03-03", "09:45")
	require.NoError(t, err)
	ev = readUntil(t, conn, func(ev admin.LiveEvent) bool {
		return ev.Type == admin.LiveEventDay && slotState(ev.Day, "09:45") == schedule.ManuallyBlocked
	})
	assert.Equal(t, "2026-03-03", ev.Date)

	require.NoError(t, conn.WriteJSON(gin.H{"type": "selectMonth", "month": "2026-03"}))
	ev = readUntil(t, conn, func(ev admin.LiveEvent) bool { return ev.Type == admin.LiveEventMonth })
	require.NotNil(t, ev.Marks)
	assert.Equal(t, "2026-03", ev.Marks.Month)
}

func TestLiveHandlerRejectsBadSelection(t *testing.T) {
	_, base := newLiveServer(t)
	conn := dial(t, base+"/api/pros/dra-vega/admin/live")

	require.NoError(t, conn.WriteJSON(gin.H{"type": "selectDate", "date": "mañana"}))
	ev := readUntil(t, conn, func(ev admin.LiveEvent) bool { return ev.Type == admin.LiveEventError })
	assert.Contains(t, ev.Error, "YYYY-MM-DD")

	require.NoError(t, conn.WriteJSON(gin.H{"type": "dance"}))
	ev = readUntil(t, conn, func(ev admin.LiveEvent) bool { return ev.Type == admin.LiveEventError })
	assert.Contains(t, ev.Error, "dance")
}

func TestLiveHandlerUnknownProfessional(t *testing.T) {
	_, base := newLiveServer(t)
	conn := dial(t, base+"/api/pros/nadie/admin/live")

	ev := readUntil(t, conn, func(ev admin.LiveEvent) bool { return ev.Type == admin.LiveEventError })
	assert.NotEmpty(t, ev.Error)
}

func TestLiveHandlerChecksOrigin(t *testing.T) {
	h := NewLiveHandler(nil, []string{"https://agenda.example.cl"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Header.Set("Origin", "https://agenda.example.cl")
	assert.True(t, h.Upgrader.CheckOrigin(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, h.Upgrader.CheckOrigin(req))
}
