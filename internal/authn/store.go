package authn

import (
	"context"
	"sync"

	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// SessionExpiredMessage is surfaced when startup validation fails outright.
const SessionExpiredMessage = "Session expired. Please sign in again."

// TokenValidator checks a stored token against the backend.
type TokenValidator interface {
	ValidateToken(ctx context.Context) (*models.ValidateResponse, error)
}

// State is an atomic snapshot of the session store. Readers never observe a
// partially updated slice of it.
type State struct {
	User          *models.User
	Token         string
	Authenticated bool
	Loading       bool
	Initialized   bool
	Err           string
}

// Store is the single source of truth for who is signed in.
type Store struct {
	mu sync.Mutex

	storage   TokenStorage
	validator TokenValidator
	log       *logging.Logger

	user          *models.User
	token         string
	authenticated bool
	loading       bool
	initialized   bool
	initializing  bool
	err           string
}

// NewStore creates the process-wide session store.
func NewStore(storage TokenStorage, validator TokenValidator, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Default()
	}
	return &Store{storage: storage, validator: validator, log: log}
}

// State returns a snapshot of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		User:          s.user,
		Token:         s.token,
		Authenticated: s.authenticated,
		Loading:       s.loading,
		Initialized:   s.initialized,
		Err:           s.err,
	}
}

// InitializeAuth validates any stored token against the backend, exactly once
// per process. All outcomes land in the state flags: loading always ends
// false and initialized always ends true.
func (s *Store) InitializeAuth(ctx context.Context) {
	s.mu.Lock()
	if s.initialized || s.initializing {
		s.mu.Unlock()
		return
	}
	s.initializing = true
	s.loading = true
	s.mu.Unlock()

	token, err := s.storage.Load()
	if err != nil || token == "" {
		if err != nil {
			s.log.Warnf("failed to read stored token: %v", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.initializing = false
		if s.initialized {
			// A sign-in completed while we were reading; it wins.
			s.loading = false
			return
		}
		s.finishInit(nil, "", "")
		return
	}

	validation, err := s.validator.ValidateToken(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializing = false
	if s.initialized {
		// A sign-in completed during validation; drop the stale result.
		s.loading = false
		return
	}

	if err != nil {
		s.log.Warnf("auth initialization failed: %v", err)
		if cerr := s.storage.Clear(); cerr != nil {
			s.log.Warnf("failed to clear stored token: %v", cerr)
		}
		s.finishInit(nil, "", SessionExpiredMessage)
		return
	}

	if validation.Valid && validation.User != nil {
		s.finishInit(validation.User, token, "")
		return
	}

	// Clean "invalid" response: erase the token, no user-facing error.
	if cerr := s.storage.Clear(); cerr != nil {
		s.log.Warnf("failed to clear stored token: %v", cerr)
	}
	s.finishInit(nil, "", "")
}

// finishInit applies the terminal state of an initialization branch.
// Callers hold s.mu.
func (s *Store) finishInit(user *models.User, token, errMsg string) {
	s.user = user
	s.token = token
	s.authenticated = user != nil && token != ""
	s.err = errMsg
	s.initialized = true
	s.loading = false
}

// SetUser adopts a freshly signed-in identity. The token is persisted so that
// every subsequent API request carries it.
func (s *Store) SetUser(user *models.User, token string) error {
	if err := s.storage.Save(token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
	s.authenticated = true
	s.err = ""
	s.initialized = true
	return nil
}

// ClearAuth signs the user out locally. The store stays initialized so a
// signed-out state never re-triggers startup validation.
func (s *Store) ClearAuth() {
	if err := s.storage.Clear(); err != nil {
		s.log.Warnf("failed to clear stored token: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.err = ""
	s.initialized = true
}

// SetLoading flags an auth operation in flight.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a user-facing error message ("" clears it) and always
// ends any in-flight loading state.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.loading = false
}
