package amqp

import (
	"encoding/json"
	"time"

	"financeflow/internal/core"
)

// Event types published after a successful ledger mutation.
const (
	EventExpenseAdded    = "expense.added"
	EventExpenseRemoved  = "expense.removed"
	EventBudgetsReplaced = "budgets.replaced"
	EventSessionLogin    = "session.login"
	EventSessionLogout   = "session.logout"
)

// LedgerEvent is a notification only; consumers never rebuild state from it.
type LedgerEvent struct {
	Type        string    `json:"type"`
	ExpenseID   string    `json:"expense_id,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	Category    string    `json:"category,omitempty"`
	BudgetCount int       `json:"budget_count,omitempty"`
	User        string    `json:"user,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseAdded(e core.Expense) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventExpenseAdded,
		ExpenseID: e.ID,
		Amount:    e.Amount.StringFixed(2),
		Category:  e.Category,
		Timestamp: time.Now(),
	}
}

func NewExpenseRemoved(id string) *LedgerEvent {
	return &LedgerEvent{Type: EventExpenseRemoved, ExpenseID: id, Timestamp: time.Now()}
}

func NewBudgetsReplaced(count int) *LedgerEvent {
	return &LedgerEvent{Type: EventBudgetsReplaced, BudgetCount: count, Timestamp: time.Now()}
}

func NewSessionEvent(eventType, user string) *LedgerEvent {
	return &LedgerEvent{Type: eventType, User: user, Timestamp: time.Now()}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
