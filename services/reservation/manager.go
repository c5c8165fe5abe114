package reservation

import (
	"errors"
	"sync"

	"campflow/models"
	"campflow/services/cart"
	"campflow/services/stepper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFlowNotFound is returned when a flow id does not name a live flow.
var ErrFlowNotFound = errors.New("checkout flow not found")

// FlowManager owns the live checkout flows. Each flow gets its own
// orchestrator, stepper engine, and form cache; the cart queue is supplied
// by the caller since it belongs to the cart owner, not the flow.
type FlowManager struct {
	mu       sync.RWMutex
	flows    map[string]*Orchestrator
	pipeline *SubmissionPipeline
	logger   *zap.Logger
}

func NewFlowManager(pipeline *SubmissionPipeline, logger *zap.Logger) *FlowManager {
	return &FlowManager{
		flows:    make(map[string]*Orchestrator),
		pipeline: pipeline,
		logger:   logger,
	}
}

// Start creates a flow over the given queue and returns its id. The empty
// queue case propagates so the caller can redirect instead of erroring.
func (m *FlowManager) Start(queue *cart.Queue, user *models.UserProfile) (string, *Orchestrator, error) {
	engine := stepper.NewEngine(m.logger)
	orch := NewOrchestrator(queue, engine, NewFormStateCache(), m.pipeline, user, m.logger)
	if err := orch.Start(); err != nil {
		return "", nil, err
	}

	id := uuid.New().String()
	m.mu.Lock()
	m.flows[id] = orch
	m.mu.Unlock()

	m.logger.Info("checkout flow started",
		zap.String("flowId", id), zap.Int("cartItems", queue.Len()))
	return id, orch, nil
}

// Get returns the live flow for an id.
func (m *FlowManager) Get(id string) (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orch, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return orch, nil
}

// End discards a flow. Ending an unknown id is a no-op.
func (m *FlowManager) End(id string) {
	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()
}

// Len reports the number of live flows.
func (m *FlowManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flows)
}
