// Package memory is the in-process backend used for development and
// tests. It mirrors the semantics of the persistent backends: validation
// on write, owner scoping, monotonic ids that survive deletes.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"finanze/internal/core"
	"finanze/internal/records"
)

type Store struct {
	mu         sync.Mutex
	txs        []core.Transaction
	goals      []core.Goal
	users      map[string]core.User
	nextTxID   int64
	nextGoalID int64
}

func New() *Store {
	return &Store{users: make(map[string]core.User), nextTxID: 1, nextGoalID: 1}
}

// Seed loads pre-built records, advancing the id counters past them. Used
// by tests and the dev backend.
func (s *Store) Seed(txs []core.Transaction, goals []core.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		s.txs = append(s.txs, cloneTransaction(t))
		if t.ID >= s.nextTxID {
			s.nextTxID = t.ID + 1
		}
	}
	for _, g := range goals {
		s.goals = append(s.goals, g)
		if g.ID >= s.nextGoalID {
			s.nextGoalID = g.ID + 1
		}
	}
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, cloneTransaction(t))
	return t.ID, nil
}

func (s *Store) ListTransactions(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if t.Owner == owner {
			out = append(out, cloneTransaction(t))
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, owner string, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txs {
		if t.Owner == owner && t.ID == id {
			return cloneTransaction(t), nil
		}
	}
	return core.Transaction{}, records.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, owner string, id int64, patch core.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txs {
		if t.Owner != owner || t.ID != id {
			continue
		}
		updated, err := patch.Apply(t)
		if err != nil {
			return err
		}
		s.txs[i] = cloneTransaction(updated)
		return nil
	}
	return records.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txs {
		if t.Owner == owner && t.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) AppendGoal(_ context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.nextGoalID
	s.nextGoalID++
	s.goals = append(s.goals, g)
	return g.ID, nil
}

func (s *Store) ListGoals(_ context.Context, owner string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.Owner == owner {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, owner string, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals {
		if g.Owner == owner && g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, records.ErrNotFound
}

func (s *Store) UpdateGoal(_ context.Context, owner string, id int64, patch core.GoalPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.Owner != owner || g.ID != id {
			continue
		}
		updated, err := patch.Apply(g)
		if err != nil {
			return err
		}
		s.goals[i] = updated
		return nil
	}
	return records.ErrNotFound
}

func (s *Store) AddGoalProgress(_ context.Context, owner string, id int64, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].Owner != owner || s.goals[i].ID != id {
			continue
		}
		g := s.goals[i]
		if err := g.AddProgress(amount); err != nil {
			return err
		}
		s.goals[i] = g
		return nil
	}
	return records.ErrNotFound
}

func (s *Store) CompleteGoal(_ context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].Owner != owner || s.goals[i].ID != id {
			continue
		}
		g := s.goals[i]
		g.Complete()
		s.goals[i] = g
		return nil
	}
	return records.ErrNotFound
}

func (s *Store) DeleteGoal(_ context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.Owner == owner && g.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	name := strings.TrimSpace(u.Username)
	if name == "" || u.PasswordHash == "" {
		return errors.New("username and password hash required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; ok {
		return records.ErrUserExists
	}
	u.Username = name
	s.users[name] = u
	return nil
}

func (s *Store) FindUser(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, records.ErrUserNotFound
	}
	return u, nil
}

// cloneTransaction copies the row deeply enough that callers can't alias
// the stored detail structs or installment slice.
func cloneTransaction(t core.Transaction) core.Transaction {
	if t.Income != nil {
		det := *t.Income
		det.InstallmentDates = append([]core.Date(nil), det.InstallmentDates...)
		t.Income = &det
	}
	if t.Expense != nil {
		det := *t.Expense
		t.Expense = &det
	}
	return t
}

var (
	_ records.TransactionReader = (*Store)(nil)
	_ records.TransactionWriter = (*Store)(nil)
	_ records.GoalReader        = (*Store)(nil)
	_ records.GoalWriter        = (*Store)(nil)
	_ records.UserStore         = (*Store)(nil)
)
