package stepper

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// transitionWindow is the debounce window applied after every successful
// navigation. Navigation requests arriving inside the window are dropped,
// not queued. This is best-effort UI debouncing against rapid repeated
// input, not a correctness-critical lock.
const transitionWindow = 50 * time.Millisecond

// Engine is the five-step state machine that gates the reservation
// walk-through. It tracks per-step validity, completion and reachability,
// the active step index, and per-cart-item completion history so that
// revisiting an item shows what was already done.
type Engine struct {
	mu sync.Mutex

	steps     []StepConfig
	current   int
	busyUntil time.Time
	clock     Clock

	currentItemID  string
	completedSteps map[string]map[int]bool
	itemProgress   map[string]bool

	logger *zap.Logger
}

// NewEngine returns an engine over the fixed step definition set, using the
// wall clock for debouncing.
func NewEngine(logger *zap.Logger) *Engine {
	return NewEngineWithClock(logger, systemClock{})
}

// NewEngineWithClock is NewEngine with an injectable clock.
func NewEngineWithClock(logger *zap.Logger, clock Clock) *Engine {
	return &Engine{
		steps:          Definitions(),
		clock:          clock,
		completedSteps: make(map[string]map[int]bool),
		itemProgress:   make(map[string]bool),
		logger:         logger,
	}
}

// SetCurrentCartItem binds the engine to a cart item id. Completion history
// recorded from here on is attributed to that item.
func (e *Engine) SetCurrentCartItem(itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentItemID = itemID
}

// CurrentStepIndex returns the active step index.
func (e *Engine) CurrentStepIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// CurrentStep returns a copy of the active step.
func (e *Engine) CurrentStep() StepConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps[e.current]
}

// Steps returns a copy of all five steps in order.
func (e *Engine) Steps() []StepConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]StepConfig, len(e.steps))
	copy(out, e.steps)
	return out
}

// CanGoNext reports whether the active step is valid and not the last.
func (e *Engine) CanGoNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canGoNextLocked()
}

func (e *Engine) canGoNextLocked() bool {
	return e.steps[e.current].IsValid && e.current < StepCount-1
}

// CanGoPrevious reports whether there is an earlier step to return to.
func (e *Engine) CanGoPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current > 0
}

// GoNext advances to the next step: the active step must be valid, the
// engine must not be inside a transition window, and there must be a next
// step. On success the active step is marked completed and navigation to the
// new index is unlocked. Returns false, leaving all state unchanged,
// otherwise.
func (e *Engine) GoNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transitioningLocked() {
		e.logger.Debug("goNext dropped inside transition window")
		return false
	}
	if !e.canGoNextLocked() {
		return false
	}

	e.markStepCompletedLocked(e.current)
	e.current++
	e.steps[e.current].CanNavigateTo = true
	e.updateActiveLocked()
	e.beginTransitionLocked()
	return true
}

// GoPrevious moves back one step without touching completion or validity
// flags.
func (e *Engine) GoPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transitioningLocked() || e.current == 0 {
		return false
	}

	e.current--
	e.updateActiveLocked()
	e.beginTransitionLocked()
	return true
}

// GoToStep jumps directly to stepIndex and retroactively unlocks navigation
// to every step up to and including it. Unlike GoNext, this manual override
// does not require the intermediate steps to be completed; it exists for
// externally driven jumps such as resuming at a previously visited step.
func (e *Engine) GoToStep(stepIndex int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transitioningLocked() || stepIndex < 0 || stepIndex >= StepCount {
		return false
	}

	for i := 0; i <= stepIndex; i++ {
		e.steps[i].CanNavigateTo = true
	}
	e.current = stepIndex
	e.updateActiveLocked()
	e.beginTransitionLocked()
	return true
}

// MarkStepValid records whether the user may currently leave the given step.
func (e *Engine) MarkStepValid(stepIndex int, isValid bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if stepIndex < 0 || stepIndex >= StepCount {
		return
	}
	e.steps[stepIndex].IsValid = isValid
}

// MarkStepCompleted marks the step completed, records the completion against
// the bound cart item for cross-visit memory, and unlocks navigation to the
// following step.
func (e *Engine) MarkStepCompleted(stepIndex int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if stepIndex < 0 || stepIndex >= StepCount {
		return
	}
	e.markStepCompletedLocked(stepIndex)
}

func (e *Engine) markStepCompletedLocked(stepIndex int) {
	e.steps[stepIndex].IsCompleted = true
	e.steps[stepIndex].IsValid = true

	if e.currentItemID != "" {
		if e.completedSteps[e.currentItemID] == nil {
			e.completedSteps[e.currentItemID] = make(map[int]bool)
		}
		e.completedSteps[e.currentItemID][stepIndex] = true
	}

	if stepIndex+1 < StepCount {
		e.steps[stepIndex+1].CanNavigateTo = true
	}
}

// IsStepCompletedForItem reports whether the step was ever completed while
// the given item was bound.
func (e *Engine) IsStepCompletedForItem(itemID string, stepIndex int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completedSteps[itemID][stepIndex]
}

// MarkCartItemComplete records that the item's booking was confirmed.
func (e *Engine) MarkCartItemComplete(itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.itemProgress[itemID] = true
}

// IsCartItemComplete reports whether the item's booking was confirmed.
func (e *Engine) IsCartItemComplete(itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.itemProgress[itemID]
}

// ResetCartItemProgress forgets all booking confirmations.
func (e *Engine) ResetCartItemProgress() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.itemProgress = make(map[string]bool)
}

// ClearCompletedSteps drops the completion history for an item, and clears
// the visible flags if that item is currently bound.
func (e *Engine) ClearCompletedSteps(itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.completedSteps, itemID)

	if itemID == e.currentItemID {
		for i := range e.steps {
			e.steps[i].IsCompleted = false
			e.steps[i].IsValid = false
		}
	}
}

// Reset reinitializes the five steps for the bound item: validity cleared,
// index back to zero, every step reachable, and completion seeded from the
// item's recorded history so a revisited item shows what was already done.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	fresh := Definitions()
	for i := range fresh {
		if e.currentItemID != "" {
			fresh[i].IsCompleted = e.completedSteps[e.currentItemID][i]
		}
		fresh[i].IsValid = false
		fresh[i].IsActive = i == 0
		fresh[i].CanNavigateTo = true
	}
	e.steps = fresh
	e.current = 0
	e.busyUntil = time.Time{}
}

func (e *Engine) transitioningLocked() bool {
	return e.clock.Now().Before(e.busyUntil)
}

func (e *Engine) beginTransitionLocked() {
	e.busyUntil = e.clock.Now().Add(transitionWindow)
}

func (e *Engine) updateActiveLocked() {
	for i := range e.steps {
		e.steps[i].IsActive = i == e.current
	}
}
