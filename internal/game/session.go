package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/RunjeethNikam/braintrain/internal/api"
	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// SessionState is the memory game's play-through state.
type SessionState string

const (
	StateLoading  SessionState = "loading"
	StateReady    SessionState = "ready"
	StateMemorize SessionState = "memorize"
	StateTest     SessionState = "test"
	StateResults  SessionState = "results"
	StateError    SessionState = "error"
)

// ErrSessionSuperseded is returned when a completion result arrives for a
// session that is no longer the active one.
var ErrSessionSuperseded = errors.New("game session superseded")

// iconPool is the fixed pool the round content is drawn from.
var iconPool = []string{
	"⭐", "🎨", "🎯", "🎪", "🎵", "🎭", "🎲", "🎸",
	"🌟", "🎮", "🎺", "🎷", "🎹", "🥁", "🎻", "🎤",
}

// AnswerPhaseSeconds is the fixed allowance added to the display time when
// estimating the total round duration.
const AnswerPhaseSeconds = 30

// Handle identifies one active play-through. Exactly one exists at a time;
// starting a new round invalidates the previous handle.
type Handle struct {
	SessionID             string
	Difficulty            int
	DifficultyDescription string
	Params                models.MemoryFlashParams
	RemainingFreeGames    int
	IsSubscribed          bool
}

// RoundResults is the backend result merged with its gating fields.
type RoundResults struct {
	models.GameResult
	RemainingFreeGames   int
	RequiresSubscription bool
}

// TickSource supplies the countdown tick channel plus its stop function. The
// default wraps time.Ticker; tests substitute a hand-driven channel.
type TickSource func(d time.Duration) (<-chan time.Time, func())

func defaultTicks(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// MemorySession drives one player through setup, memorize, test and results
// for the memory game.
type MemorySession struct {
	mu sync.Mutex

	svc   *Service
	log   *logging.Logger
	rng   *rand.Rand
	ticks TickSource

	state     SessionState
	handle    *Handle
	errMsg    string
	items     []string
	choices   []string
	selected  map[string]bool
	timeLeft  int
	stopTimer func()
	timerGen  int
	results   *RoundResults
}

// NewMemorySession creates an idle session bound to the game service.
func NewMemorySession(svc *Service, log *logging.Logger) *MemorySession {
	if log == nil {
		log = logging.Default()
	}
	return &MemorySession{
		svc:      svc,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		ticks:    defaultTicks,
		state:    StateLoading,
		selected: make(map[string]bool),
	}
}

// SetTickSource overrides the countdown tick source. Must be called before
// Begin.
func (m *MemorySession) SetTickSource(ts TickSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = ts
}

// State returns the current play-through state.
func (m *MemorySession) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Handle returns the active session handle, nil outside a play-through.
func (m *MemorySession) Handle() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

// Items returns the true item set shown during memorize.
func (m *MemorySession) Items() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.items...)
}

// Choices returns the shuffled choice set offered during test.
func (m *MemorySession) Choices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.choices...)
}

// Selected returns the currently selected items.
func (m *MemorySession) Selected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.selected))
	for item := range m.selected {
		out = append(out, item)
	}
	return out
}

// TimeLeft returns the remaining memorize seconds.
func (m *MemorySession) TimeLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeLeft
}

// ErrorMessage returns the message behind the error state.
func (m *MemorySession) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// Results returns the merged round results once in the results state.
func (m *MemorySession) Results() *RoundResults {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results
}

// Start requests a session from the backend and derives the round content
// locally. A still-active previous round is abandoned first so its handle
// does not leak server-side.
func (m *MemorySession) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.handle != nil && (m.state == StateMemorize || m.state == StateTest) {
		stale := m.handle.SessionID
		m.haltTimerLocked()
		m.mu.Unlock()
		m.svc.Abandon(ctx, stale)
		m.mu.Lock()
	}
	m.state = StateLoading
	m.errMsg = ""
	m.handle = nil
	m.mu.Unlock()

	resp, err := m.svc.Start(ctx, models.MemoryFlash)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.state = StateError
		m.errMsg = errorMessage(err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	params := resp.GameParams.MemoryFlash
	if params == nil {
		m.state = StateError
		m.errMsg = "Failed to start game. Please try again."
		return errors.New("game start response missing memory parameters")
	}

	m.handle = &Handle{
		SessionID:             resp.SessionID,
		Difficulty:            resp.Difficulty,
		DifficultyDescription: resp.DifficultyDescription,
		Params:                *params,
		RemainingFreeGames:    resp.RemainingFreeGames,
		IsSubscribed:          resp.IsSubscribed,
	}

	// Round content is derived client-side: the backend only ever learns
	// counts of correct and incorrect answers, never which concrete items
	// were shown. Accepted trust limitation of the current backend design.
	shuffled := append([]string(nil), iconPool...)
	m.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	m.items = append([]string(nil), shuffled[:params.ItemCount]...)

	distractors := shuffled[params.ItemCount:]
	need := params.ChoiceCount - params.ItemCount
	if need > len(distractors) {
		need = len(distractors)
	}
	choices := append(append([]string(nil), m.items...), distractors[:need]...)
	m.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	m.choices = choices

	m.selected = make(map[string]bool)
	m.results = nil
	m.timeLeft = 0
	m.state = StateReady
	return nil
}

// Begin starts the memorize countdown. The transition to test fires exactly
// once, at the tick where the remaining time reaches zero.
func (m *MemorySession) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady || m.handle == nil {
		return errors.New("game is not ready to begin")
	}

	m.state = StateMemorize
	m.timeLeft = m.handle.Params.DisplayTimeSeconds
	if m.timeLeft <= 0 {
		m.state = StateTest
		return nil
	}

	m.timerGen++
	gen := m.timerGen
	tick, stop := m.ticks(time.Second)

	// Stopping a ticker never closes its channel, so the goroutine needs its
	// own exit signal for the halted-mid-countdown case.
	done := make(chan struct{})
	m.stopTimer = func() {
		stop()
		close(done)
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-tick:
				if m.countDown(gen) {
					return
				}
			}
		}
	}()
	return nil
}

// countDown applies one second of countdown. Returns true when the timer
// goroutine must exit: on reaching zero or on a stale generation.
func (m *MemorySession) countDown(gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.timerGen || m.state != StateMemorize {
		return true
	}

	m.timeLeft--
	if m.timeLeft > 0 {
		return false
	}

	m.timeLeft = 0
	m.state = StateTest
	m.haltTimerLocked()
	return true
}

// haltTimerLocked clears the countdown handle. Callers hold m.mu.
func (m *MemorySession) haltTimerLocked() {
	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}
	m.timerGen++
}

// Toggle selects or deselects a choice item during the test phase. Selecting
// past the item cap is a no-op and never evicts an earlier selection;
// deselecting always succeeds. Reports whether the selection set changed.
func (m *MemorySession) Toggle(item string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateTest || m.handle == nil {
		return false
	}

	if m.selected[item] {
		delete(m.selected, item)
		return true
	}
	if len(m.selected) >= m.handle.Params.ItemCount {
		return false
	}
	valid := false
	for _, c := range m.choices {
		if c == item {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}
	m.selected[item] = true
	return true
}

// CanSubmit reports whether the selection is complete.
func (m *MemorySession) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateTest && m.handle != nil && len(m.selected) == m.handle.Params.ItemCount
}

// Submit grades the selection locally, reports counts to the backend and
// merges the authoritative result with the backend's gating fields.
func (m *MemorySession) Submit(ctx context.Context) (*RoundResults, error) {
	m.mu.Lock()
	if m.state != StateTest || m.handle == nil {
		m.mu.Unlock()
		return nil, errors.New("no answers to submit")
	}
	if len(m.selected) != m.handle.Params.ItemCount {
		m.mu.Unlock()
		return nil, errors.New("selection is incomplete")
	}

	correct := 0
	for _, item := range m.items {
		if m.selected[item] {
			correct++
		}
	}

	req := CompleteRequest{
		SessionID:         m.handle.SessionID,
		CorrectAnswers:    correct,
		TotalQuestions:    m.handle.Params.ItemCount,
		DurationInSeconds: m.handle.Params.DisplayTimeSeconds + AnswerPhaseSeconds,
	}
	m.mu.Unlock()

	resp, err := m.svc.Complete(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Ignore a stale response: the handle may have been replaced while the
	// completion call was in flight.
	if m.handle == nil || m.handle.SessionID != req.SessionID {
		return nil, ErrSessionSuperseded
	}

	if err != nil {
		return nil, err
	}

	m.results = &RoundResults{
		GameResult:           resp.Result,
		RemainingFreeGames:   resp.RemainingFreeGames,
		RequiresSubscription: resp.RequiresSubscription,
	}
	m.state = StateResults
	return m.results, nil
}

// Abandon leaves an in-progress round: it stops the countdown and fires the
// best-effort abandon call before the caller navigates away.
func (m *MemorySession) Abandon(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateMemorize && m.state != StateTest {
		m.mu.Unlock()
		return
	}
	sessionID := m.handle.SessionID
	m.haltTimerLocked()
	m.resetLocked()
	m.mu.Unlock()

	m.svc.Abandon(ctx, sessionID)
}

// PlayAgain fully resets the round content and re-enters loading.
func (m *MemorySession) PlayAgain(ctx context.Context) error {
	m.mu.Lock()
	m.resetLocked()
	m.mu.Unlock()
	return m.Start(ctx)
}

// resetLocked clears all round-local state. Callers hold m.mu.
func (m *MemorySession) resetLocked() {
	m.handle = nil
	m.items = nil
	m.choices = nil
	m.selected = make(map[string]bool)
	m.results = nil
	m.timeLeft = 0
	m.errMsg = ""
	m.state = StateLoading
}

// errorMessage extracts the user-facing message for the error state.
func errorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Failed to start game. Please try again."
}
