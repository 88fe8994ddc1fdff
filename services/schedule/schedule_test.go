package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/models"
)

func TestIsOutsideBusinessHours(t *testing.T) {
	cfg := models.ScheduleConfig{StartTime: "09:00", EndTime: "17:00", LunchStart: "13:00", LunchEnd: "14:00"}

	tests := []struct {
		slot string
		want bool
	}{
		{"08:45", true},
		{"09:00", false},
		{"12:59", false},
		{"13:00", true},
		{"13:59", true},
		{"14:00", false},
		{"17:00", false},
		{"17:01", true},
	}
	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOutsideBusinessHours(tt.slot, cfg))
		})
	}
}

func TestIsOutsideBusinessHours_UnsetBounds(t *testing.T) {
	assert.False(t, IsOutsideBusinessHours("03:00", models.ScheduleConfig{}))
	assert.False(t, IsOutsideBusinessHours("23:30", models.ScheduleConfig{StartTime: "08:00"}))

	// one lunch bound alone is ignored
	half := models.ScheduleConfig{LunchStart: "13:00"}
	assert.False(t, IsOutsideBusinessHours("13:30", half))
}

func TestGenerateTimeSlots(t *testing.T) {
	first := TimeSlots(45)
	second := TimeSlots(45)
	require.Equal(t, first, second)
	require.Len(t, first, 22)
	assert.Equal(t, "06:00", first[0])
	assert.Equal(t, "06:45", first[1])
	assert.Equal(t, "21:45", first[len(first)-1])

	assert.Equal(t, first, TimeSlots(0))
	assert.Equal(t, first, TimeSlots(-5))
}

func TestGenerateTimeSlots_Count(t *testing.T) {
	for _, interval := range []int{5, 15, 30, 45, 50, 60, 90, 240} {
		assert.Len(t, TimeSlots(interval), SlotCount(interval), "interval %d", interval)
	}
	assert.Equal(t, 20, SlotCount(50)) // 960/50 rounds up
}

func TestGenerateTimeSlots_EarlyStop(t *testing.T) {
	var got []string
	for s := range GenerateTimeSlots(60) {
		got = append(got, s)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"06:00", "07:00", "08:00"}, got)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "09:45", FormatMinutes(585))
	assert.Equal(t, "06:00", FormatMinutes(DayStart))
	assert.Equal(t, "21:15", FormatMinutes(21*60+15))
}

func confirmed(date, slot string) models.Appointment {
	return models.Appointment{ID: "a-" + slot, Date: date, Time: slot, Status: models.StatusConfirmed}
}

func TestClassify_WholeDayBlockDominates(t *testing.T) {
	const date = "2025-06-01"
	cfg := models.ScheduleConfig{SlotInterval: 45}
	snap := DaySnapshot{Date: date, Blocks: []models.Block{models.NewBlock("pro", date, models.AllDay)}}

	for _, row := range ResolveDay(cfg, snap) {
		assert.Equal(t, ManuallyBlocked, row.State, row.Time)
		assert.Equal(t, date+"_all", row.BlockID)
	}
}

func TestClassify_OccupiedBeatsBlocked(t *testing.T) {
	const date = "2025-06-01"
	cfg := models.ScheduleConfig{StartTime: "09:00", EndTime: "18:00"}
	snap := DaySnapshot{
		Date:         date,
		Appointments: []models.Appointment{confirmed(date, "09:45")},
		Blocks:       []models.Block{models.NewBlock("pro", date, "09:45")},
	}
	assert.Equal(t, Occupied, Classify("09:45", cfg, snap))

	// an appointment outside hours still shows as occupied
	snap.Appointments = append(snap.Appointments, confirmed(date, "06:00"))
	assert.Equal(t, Occupied, Classify("06:00", cfg, snap))
}

func TestClassify_Precedence(t *testing.T) {
	const date = "2025-06-01"
	cfg := models.ScheduleConfig{StartTime: "09:00", EndTime: "18:00", LunchStart: "13:00", LunchEnd: "14:00"}
	cancelled := confirmed(date, "10:30")
	cancelled.Status = models.StatusCancelled
	snap := DaySnapshot{
		Date: date,
		Appointments: []models.Appointment{
			cancelled,
			confirmed("2025-06-02", "11:15"),
		},
		Blocks: []models.Block{
			models.NewBlock("pro", date, "12:00"),
			models.NewBlock("pro", date, "13:00"),
			models.NewBlock("pro", "2025-06-02", models.AllDay),
		},
	}

	assert.Equal(t, OutsideHours, Classify("06:45", cfg, snap))
	assert.Equal(t, OutsideHours, Classify("13:00", cfg, snap), "outside hours wins over a block")
	assert.Equal(t, ManuallyBlocked, Classify("12:00", cfg, snap))
	assert.Equal(t, Free, Classify("10:30", cfg, snap), "cancelled appointments free the slot")
	assert.Equal(t, Free, Classify("11:15", cfg, snap), "other dates are ignored")
	assert.True(t, IsBookable("09:00", cfg, snap))
	assert.False(t, IsBookable("12:00", cfg, snap))
}

func TestBookingView_HidesOutsideHours(t *testing.T) {
	const date = "2025-06-01"
	cfg := models.ScheduleConfig{StartTime: "09:00", EndTime: "11:00", SlotInterval: 30}
	snap := DaySnapshot{
		Date:         date,
		Appointments: []models.Appointment{confirmed(date, "09:30")},
		Blocks:       []models.Block{models.NewBlock("pro", date, "10:00")},
	}

	view := BookingView(ResolveDay(cfg, snap))
	assert.Equal(t, []BookableSlot{
		{Time: "09:00", Available: true},
		{Time: "09:30", Available: false},
		{Time: "10:00", Available: false},
		{Time: "10:30", Available: true},
		{Time: "11:00", Available: true},
	}, view)
}

func TestBlockCovering_PrefersSlotBlock(t *testing.T) {
	const date = "2025-06-01"
	snap := DaySnapshot{Date: date, Blocks: []models.Block{
		models.NewBlock("pro", date, models.AllDay),
		models.NewBlock("pro", date, "10:00"),
	}}
	b, ok := BlockCovering("10:00", snap)
	require.True(t, ok)
	assert.Equal(t, "10:00", b.Time)

	b, ok = BlockCovering("11:00", snap)
	require.True(t, ok)
	assert.True(t, b.IsAllDay())
	assert.True(t, snap.DayBlocked())
}

func TestSlotState_JSON(t *testing.T) {
	b, err := Free.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"free"`, string(b))

	var s SlotState
	require.NoError(t, s.UnmarshalJSON([]byte(`"outside_hours"`)))
	assert.Equal(t, OutsideHours, s)
	assert.Error(t, s.UnmarshalJSON([]byte(`"nope"`)))
}
