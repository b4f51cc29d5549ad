package auth_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	auth "github.com/goliatone/go-auth-confirm"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// memoryStore is an in-memory IdentityStore. Tokens are single use.
type memoryStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*auth.User
	tokens      map[string]uuid.UUID
	nextToken   int
	passwordSet map[uuid.UUID]string

	findErr     error
	generateErr error
	confirmErr  error
	panicOnFind bool

	confirmCalls  int
	generateCalls int
	resetCalls    int
}

func newMemoryStore(users ...*auth.User) *memoryStore {
	s := &memoryStore{
		users:       map[uuid.UUID]*auth.User{},
		tokens:      map[string]uuid.UUID{},
		passwordSet: map[uuid.UUID]string{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memoryStore) addToken(user *auth.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = user.ID
}

func (s *memoryStore) user(id uuid.UUID) auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOnFind {
		panic("store exploded")
	}
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GenerateConfirmationToken(_ context.Context, user *auth.User) (string, error) {
	return s.generate(user)
}

func (s *memoryStore) GeneratePasswordResetToken(_ context.Context, user *auth.User) (string, error) {
	return s.generate(user)
}

func (s *memoryStore) generate(user *auth.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateCalls++
	if s.generateErr != nil {
		return "", s.generateErr
	}
	s.nextToken++
	token := fmt.Sprintf("token-%d", s.nextToken)
	s.tokens[token] = user.ID
	return token, nil
}

func (s *memoryStore) ConfirmToken(_ context.Context, user *auth.User, token string) (auth.TokenResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmCalls++
	if s.confirmErr != nil {
		return auth.TokenResult{}, s.confirmErr
	}
	if owner, ok := s.tokens[token]; !ok || owner != user.ID {
		return auth.TokenRejected(auth.ReasonInvalidToken), nil
	}
	delete(s.tokens, token)
	s.users[user.ID].EmailValidated = true
	return auth.TokenAccepted(), nil
}

func (s *memoryStore) ResetPassword(_ context.Context, user *auth.User, token, passwordHash string) (auth.TokenResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalls++
	if s.confirmErr != nil {
		return auth.TokenResult{}, s.confirmErr
	}
	if owner, ok := s.tokens[token]; !ok || owner != user.ID {
		return auth.TokenRejected(auth.ReasonInvalidToken), nil
	}
	delete(s.tokens, token)
	s.users[user.ID].EmailValidated = true
	s.passwordSet[user.ID] = passwordHash
	return auth.TokenAccepted(), nil
}

// recordingNotifier wraps ObservableNotifier and keeps every event.
type recordingNotifier struct {
	*auth.ObservableNotifier
	mu     sync.Mutex
	events []auth.NotificationEvent
}

func newRecordingNotifier() *recordingNotifier {
	n := &recordingNotifier{}
	n.ObservableNotifier = auth.NewObservableNotifier(func(_ context.Context, event auth.NotificationEvent) {
		n.mu.Lock()
		n.events = append(n.events, event)
		n.mu.Unlock()
	})
	return n
}

func (n *recordingNotifier) Events() []auth.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]auth.NotificationEvent, len(n.events))
	copy(out, n.events)
	return out
}

type failingNotifier struct{}

func (failingNotifier) SendConfirmationLink(context.Context, string, string) error {
	return auth.NewDispatchError(nil, "smtp down")
}

func (failingNotifier) SendPasswordResetLink(context.Context, string, string) error {
	return auth.NewDispatchError(nil, "smtp down")
}

func (failingNotifier) SendPasswordResetCode(context.Context, string, string) error {
	return auth.NewDispatchError(nil, "smtp down")
}

func testLinks() auth.LinkBuilder {
	builder, err := auth.NewRouteLinkBuilder("https://example.test", nil)
	if err != nil {
		panic(err)
	}
	return builder
}

// captureLogger keeps every formatted log line.
type captureLogger struct {
	mu    *sync.Mutex
	lines *[]string
}

func newCaptureLogger() captureLogger {
	return captureLogger{mu: &sync.Mutex{}, lines: &[]string{}}
}

func (l captureLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.lines = append(*l.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l captureLogger) Trace(msg string, args ...any) { l.log("TRACE", msg, args...) }
func (l captureLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l captureLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l captureLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l captureLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l captureLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg, args...) }

func (l captureLogger) WithContext(context.Context) glog.Logger { return l }

func (l captureLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(*l.lines))
	copy(out, *l.lines)
	return out
}

func (l captureLogger) Contains(s string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newOutcomeCounter() *outcomeCounter {
	return &outcomeCounter{counts: map[string]int{}}
}

func (c *outcomeCounter) RecordOutcome(workflow, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[workflow+"/"+outcome]++
}

func (c *outcomeCounter) Count(workflow, outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[workflow+"/"+outcome]
}

func unconfirmedUser(email string) *auth.User {
	return &auth.User{ID: uuid.New(), Email: email, Username: email}
}

func fastHasher(password string) (string, error) {
	return "hashed:" + password, nil
}
