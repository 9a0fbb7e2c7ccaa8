package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"financeflow/internal/amqp"
	"financeflow/internal/core"
	"financeflow/internal/repository"
	"financeflow/internal/session"
)

// Publisher delivers ledger notifications. A nil Publisher disables them.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService validates user intents, applies them to the repositories
// and announces the result. Publishing never fails a mutation.
type LedgerService struct {
	expenses  *repository.ExpenseRepository
	budgets   *repository.BudgetRepository
	sessions  *session.Manager
	publisher Publisher
	closers   []io.Closer
}

func NewLedgerService(expenses *repository.ExpenseRepository, budgets *repository.BudgetRepository, sessions *session.Manager, publisher Publisher, closers ...io.Closer) *LedgerService {
	return &LedgerService{
		expenses:  expenses,
		budgets:   budgets,
		sessions:  sessions,
		publisher: publisher,
		closers:   closers,
	}
}

// Load reads both repositories from the store, seeding them on first run.
func (s *LedgerService) Load(ctx context.Context) error {
	if err := s.expenses.Load(ctx); err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	if err := s.budgets.Load(ctx); err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	return nil
}

func (s *LedgerService) Expenses() []core.Expense { return s.expenses.List() }

func (s *LedgerService) Budgets() []core.Budget { return s.budgets.List() }

// AddExpense records a validated expense. Invalid input mutates nothing.
func (s *LedgerService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	e, err := s.expenses.Add(ctx, in.Amount, in.Category, in.Description, in.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	s.publish(ctx, amqp.NewExpenseAdded(e))
	return e, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.expenses.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, amqp.NewExpenseRemoved(id))
	return nil
}

func (s *LedgerService) ReplaceBudgets(ctx context.Context, budgets []core.Budget) error {
	if err := s.budgets.ReplaceAll(ctx, budgets); err != nil {
		return fmt.Errorf("replace budgets: %w", err)
	}
	s.publish(ctx, amqp.NewBudgetsReplaced(len(budgets)))
	return nil
}

func (s *LedgerService) Login(ctx context.Context, email string) (string, error) {
	user, err := s.sessions.Login(ctx, email)
	if err != nil {
		return "", err
	}
	s.publish(ctx, amqp.NewSessionEvent(amqp.EventSessionLogin, user))
	return user, nil
}

func (s *LedgerService) Signup(ctx context.Context, u core.User) (string, error) {
	user, err := s.sessions.Signup(ctx, u)
	if err != nil {
		return "", err
	}
	s.publish(ctx, amqp.NewSessionEvent(amqp.EventSessionLogin, user))
	return user, nil
}

func (s *LedgerService) Logout(ctx context.Context) error {
	user, _, _ := s.sessions.CurrentUser(ctx)
	if err := s.sessions.Logout(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewSessionEvent(amqp.EventSessionLogout, user))
	return nil
}

func (s *LedgerService) CurrentUser(ctx context.Context) (string, bool, error) {
	return s.sessions.CurrentUser(ctx)
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publishing disabled, skipping ledger event", "type", event.Type)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type, "error", err)
	}
}

// Close releases the store and the broker connection.
func (s *LedgerService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
