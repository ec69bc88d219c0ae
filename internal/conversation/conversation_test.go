package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/parley-ai/parley/internal/message"
	"github.com/parley-ai/parley/internal/project"
	"github.com/parley-ai/parley/internal/provider"
	"github.com/parley-ai/parley/internal/session"
)

// In-memory stores and a scripted provider client shared by the tests in
// this package.

type memMessageStore struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*message.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{nextID: 1}
}

func (s *memMessageStore) Create(_ context.Context, msg *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextID
	s.nextID++
	msg.CreatedAt = time.Now()
	stored := *msg
	s.msgs = append(s.msgs, &stored)
	return nil
}

func (s *memMessageStore) Get(_ context.Context, id int64) (*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, message.ErrNotFound
}

func (s *memMessageStore) GetBySession(_ context.Context, sessionID string) ([]*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*message.Message
	for _, m := range s.msgs {
		if m.SessionID == sessionID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memMessageStore) Count(_ context.Context, sessionID string) (int64, error) {
	msgs, _ := s.GetBySession(context.Background(), sessionID) //nolint:errcheck
	return int64(len(msgs)), nil
}

func (s *memMessageStore) DeleteBySession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.msgs[:0]
	for _, m := range s.msgs {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	s.msgs = kept
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*session.Session)}
}

func (s *memSessionStore) Create(_ context.Context, id, projectID, title string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sess := &session.Session{ID: id, ProjectID: projectID, Title: title, CreatedAt: now, UpdatedAt: now}
	s.sessions[id] = sess
	copied := *sess
	return &copied, nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *memSessionStore) List(_ context.Context) ([]*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		copied := *sess
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memSessionStore) ListByProject(_ context.Context, projectID string) ([]*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*session.Session
	for _, sess := range s.sessions {
		if sess.ProjectID == projectID {
			copied := *sess
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memSessionStore) UpdateTitle(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.Title = title
	return nil
}

func (s *memSessionStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type memProjectStore struct {
	mu       sync.Mutex
	projects map[string]*project.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[string]*project.Project)}
}

func (s *memProjectStore) Create(_ context.Context, id, name, instructions string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	proj := &project.Project{ID: id, Name: name, Instructions: instructions, CreatedAt: now, UpdatedAt: now}
	s.projects[id] = proj
	copied := *proj
	return &copied, nil
}

func (s *memProjectStore) Get(_ context.Context, id string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, ok := s.projects[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	copied := *proj
	return &copied, nil
}

func (s *memProjectStore) List(_ context.Context) ([]*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*project.Project, 0, len(s.projects))
	for _, proj := range s.projects {
		copied := *proj
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memProjectStore) Update(_ context.Context, id, name, instructions string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, ok := s.projects[id]
	if !ok {
		return project.ErrNotFound
	}
	proj.Name = name
	proj.Instructions = instructions
	return nil
}

func (s *memProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

// fakeClient replays a scripted stream and records the request it was given.
type fakeClient struct {
	name string

	mu      sync.Mutex
	deltas  []string
	openErr error
	recvErr error
	// block, when non-nil, makes the stream's first Recv wait until the
	// channel is closed.
	block chan struct{}

	lastReq provider.Request
}

func (c *fakeClient) Name() string { return c.name }

func (c *fakeClient) StreamReply(_ context.Context, req provider.Request) (provider.Stream, error) {
	c.mu.Lock()
	c.lastReq = req
	c.mu.Unlock()

	if c.openErr != nil {
		return nil, c.openErr
	}
	return &fakeStream{deltas: c.deltas, recvErr: c.recvErr, block: c.block}, nil
}

func (c *fakeClient) request() provider.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReq
}

type fakeStream struct {
	deltas  []string
	recvErr error
	block   chan struct{}
	pos     int
}

func (s *fakeStream) Recv() (string, error) {
	if s.block != nil {
		<-s.block
		s.block = nil
	}
	if s.pos < len(s.deltas) {
		delta := s.deltas[s.pos]
		s.pos++
		return delta, nil
	}
	if s.recvErr != nil {
		return "", s.recvErr
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error { return nil }

var errBoom = errors.New("boom")

func singleClientRegistry(c *fakeClient) *provider.Registry {
	r := provider.NewRegistry()
	r.SetDefault(func() provider.Client { return c })
	return r
}

func roles(msgs []*message.Message) string {
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += ","
		}
		out += string(m.Role)
	}
	return out
}

func contentsSummary(msgs []*message.Message) string {
	out := ""
	for _, m := range msgs {
		out += fmt.Sprintf("[%s]%s", m.Role, m.Content)
	}
	return out
}
