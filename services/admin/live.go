package admin

import (
	"context"
	"sync"

	"agenda/database/repository"
	"agenda/models"
	"agenda/services/schedule"
	"agenda/utils"

	"go.uber.org/zap"
)

const (
	LiveEventDay   = "day"
	LiveEventMonth = "month"
	LiveEventError = "error"
)

// LiveEvent is pushed to the admin panel whenever its selected day or month changes.
type LiveEvent struct {
	Type  string                  `json:"type"`
	Date  string                  `json:"date,omitempty"`
	Month string                  `json:"month,omitempty"`
	Day   *DayView                `json:"day,omitempty"`
	Marks *models.MonthIndicators `json:"marks,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// watchPair holds the latest results of an appointment watch and a block
// watch over the same range.
type watchPair struct {
	appts      []models.Appointment
	blocks     []models.Block
	haveAppts  bool
	haveBlocks bool
}

func (w *watchPair) ready() bool { return w.haveAppts && w.haveBlocks }

// LiveSession is the view state of one admin connection: the selected date
// and month and the watches feeding them. Selecting a new date or month
// closes the old watches before opening new ones.
type LiveSession struct {
	svc            *DefaultAdminService
	professionalID string
	emit           func(LiveEvent)

	selMu     sync.Mutex // serializes Select* and Close
	daySubs   []repository.Subscription
	monthSubs []repository.Subscription
	closed    bool

	stateMu  sync.Mutex // guards the fields below and emit
	date     string
	settings models.ScheduleConfig
	day      watchPair
	month    string
	marks    watchPair
}

// OpenLiveSession starts an empty session. emit is called from watch
// goroutines, never concurrently and never after Close returns.
func (s *DefaultAdminService) OpenLiveSession(ctx context.Context, professionalID string, emit func(LiveEvent)) (*LiveSession, error) {
	if _, err := s.professional(ctx, professionalID); err != nil {
		return nil, err
	}
	l := &LiveSession{svc: s, professionalID: professionalID, emit: emit}
	s.liveMu.Lock()
	if s.live == nil {
		s.live = make(map[string]map[*LiveSession]struct{})
	}
	if s.live[professionalID] == nil {
		s.live[professionalID] = make(map[*LiveSession]struct{})
	}
	s.live[professionalID][l] = struct{}{}
	s.liveMu.Unlock()
	s.Metrics.LiveSessionOpened()
	return l, nil
}

func (s *DefaultAdminService) dropLiveSession(l *LiveSession) {
	s.liveMu.Lock()
	defer s.liveMu.Unlock()
	delete(s.live[l.professionalID], l)
	if len(s.live[l.professionalID]) == 0 {
		delete(s.live, l.professionalID)
	}
}

// broadcastSettings re-renders the open day views of professionalID with cfg.
func (s *DefaultAdminService) broadcastSettings(professionalID string, cfg models.ScheduleConfig) {
	s.liveMu.Lock()
	sessions := make([]*LiveSession, 0, len(s.live[professionalID]))
	for l := range s.live[professionalID] {
		sessions = append(sessions, l)
	}
	s.liveMu.Unlock()

	for _, l := range sessions {
		l.applySettings(cfg)
	}
}

func closeAll(subs []repository.Subscription) {
	for _, sub := range subs {
		_ = sub.Close()
	}
}

// SelectDate switches the day watches to date.
func (l *LiveSession) SelectDate(ctx context.Context, date string) error {
	if !utils.ValidateDate(date) {
		return utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}

	l.selMu.Lock()
	defer l.selMu.Unlock()
	if l.closed {
		return nil
	}
	// read under selMu so a concurrent applySettings cannot be overwritten
	pro, err := l.svc.professional(ctx, l.professionalID)
	if err != nil {
		return err
	}
	closeAll(l.daySubs)
	l.daySubs = nil

	l.stateMu.Lock()
	l.date = date
	l.settings = pro.Settings
	l.day = watchPair{}
	l.stateMu.Unlock()

	rng := repository.Day(date)
	apptSub, err := l.svc.Appointments.Watch(ctx, l.professionalID, rng, func(appts []models.Appointment, err error) {
		l.onDay(err, func(p *watchPair) { p.appts, p.haveAppts = appts, true })
	})
	if err != nil {
		return err
	}
	blockSub, err := l.svc.Blocks.Watch(ctx, l.professionalID, rng, func(blocks []models.Block, err error) {
		l.onDay(err, func(p *watchPair) { p.blocks, p.haveBlocks = blocks, true })
	})
	if err != nil {
		_ = apptSub.Close()
		return err
	}
	l.daySubs = []repository.Subscription{apptSub, blockSub}
	return nil
}

// SelectMonth switches the month watches to month.
func (l *LiveSession) SelectMonth(ctx context.Context, month string) error {
	if !utils.ValidateMonth(month) {
		return utils.NewValidationError("month", "month must be YYYY-MM")
	}

	l.selMu.Lock()
	defer l.selMu.Unlock()
	if l.closed {
		return nil
	}
	closeAll(l.monthSubs)
	l.monthSubs = nil

	l.stateMu.Lock()
	l.month = month
	l.marks = watchPair{}
	l.stateMu.Unlock()

	rng := repository.Month(month)
	apptSub, err := l.svc.Appointments.Watch(ctx, l.professionalID, rng, func(appts []models.Appointment, err error) {
		l.onMonth(err, func(p *watchPair) { p.appts, p.haveAppts = appts, true })
	})
	if err != nil {
		return err
	}
	blockSub, err := l.svc.Blocks.Watch(ctx, l.professionalID, rng, func(blocks []models.Block, err error) {
		l.onMonth(err, func(p *watchPair) { p.blocks, p.haveBlocks = blocks, true })
	})
	if err != nil {
		_ = apptSub.Close()
		return err
	}
	l.monthSubs = []repository.Subscription{apptSub, blockSub}
	return nil
}

func (l *LiveSession) onDay(err error, update func(*watchPair)) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	if err != nil {
		l.fail(err)
		return
	}
	update(&l.day)
	l.emitDayLocked()
}

// emitDayLocked requires stateMu.
func (l *LiveSession) emitDayLocked() {
	if !l.day.ready() {
		return
	}
	snap := schedule.DaySnapshot{Date: l.date, Appointments: l.day.appts, Blocks: l.day.blocks}
	l.emit(LiveEvent{Type: LiveEventDay, Date: l.date, Day: newDayView(l.settings, snap)})
}

// applySettings swaps the schedule the day view classifies against.
func (l *LiveSession) applySettings(cfg models.ScheduleConfig) {
	l.selMu.Lock()
	defer l.selMu.Unlock()
	if l.closed {
		return
	}
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	l.settings = cfg
	l.emitDayLocked()
}

func (l *LiveSession) onMonth(err error, update func(*watchPair)) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	if err != nil {
		l.fail(err)
		return
	}
	update(&l.marks)
	if !l.marks.ready() {
		return
	}
	l.emit(LiveEvent{Type: LiveEventMonth, Month: l.month, Marks: monthIndicators(l.month, l.marks.appts, l.marks.blocks)})
}

// fail reports a broken watch; the client re-selects to resume.
func (l *LiveSession) fail(err error) {
	utils.GetLogger().Warn("Live watch failed", zap.String("professionalID", l.professionalID), zap.Error(err))
	l.emit(LiveEvent{Type: LiveEventError, Error: "live updates interrupted"})
}

// Close disposes every watch. It is safe to call more than once.
func (l *LiveSession) Close() error {
	l.selMu.Lock()
	defer l.selMu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	closeAll(l.daySubs)
	closeAll(l.monthSubs)
	l.daySubs, l.monthSubs = nil, nil
	l.svc.dropLiveSession(l)
	l.svc.Metrics.LiveSessionClosed()
	return nil
}
