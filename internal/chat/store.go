package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// CustomerResolver creates or finds the customer that owns a session.
type CustomerResolver interface {
	ResolveByPhone(ctx context.Context, fullName, phone, email string) (*customers.Customer, bool, error)
}

// Store is the chat session store: Postgres repository plus an optional Redis
// read-through cache for transcripts.
type Store struct {
	repo      *Repository
	cache     *HistoryCache
	customers CustomerResolver
	logger    *logging.Logger
}

// NewStore wires the session store. cache may be nil.
func NewStore(repo *Repository, cache *HistoryCache, resolver CustomerResolver, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		repo:      repo,
		cache:     cache,
		customers: resolver,
		logger:    logger,
	}
}

// StartSession resolves or creates the customer by phone and opens a session
// with an empty transcript.
func (s *Store) StartSession(ctx context.Context, customerName, customerPhone, customerEmail string) (*Session, *customers.Customer, error) {
	customer, created, err := s.customers.ResolveByPhone(ctx, customerName, customerPhone, customerEmail)
	if err != nil {
		return nil, nil, err
	}
	if created {
		s.logger.Info("customer created", "customer_id", customer.ID, "phone", customer.Phone)
	}

	session, err := s.repo.CreateSession(ctx, customer.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("chat session started", "session_id", session.ID, "customer_id", customer.ID)
	return session, customer, nil
}

// AppendMessage appends to the durable transcript and drops the cached copy
// so the next read picks up the storage layer's ordering.
func (s *Store) AppendMessage(ctx context.Context, sessionID uuid.UUID, sender, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if sender == "" {
		sender = SenderUser
	}

	if err := s.repo.AppendMessage(ctx, sessionID, sender, text); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID.String()); err != nil {
			s.logger.Warn("history cache invalidation failed", "error", err, "session_id", sessionID)
		}
	}
	return nil
}

// History returns the transcript, reading through the cache when present.
func (s *Store) History(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	if s.cache != nil {
		history, ok, err := s.cache.Load(ctx, sessionID.String())
		if err != nil {
			s.logger.Warn("history cache read failed", "error", err, "session_id", sessionID)
		} else if ok {
			return history, nil
		}
	}

	history, err := s.repo.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, sessionID.String(), history); err != nil {
			s.logger.Warn("history cache fill failed", "error", err, "session_id", sessionID)
		}
	}
	return history, nil
}
