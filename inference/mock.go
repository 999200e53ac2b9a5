package inference

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a lightweight in-memory Client for tests and examples. Two
// scripting styles are supported and may be mixed: a FIFO queue of replies
// consumed in order (Enqueue / EnqueueError), and canned completions keyed by
// the last conversation message (AddResponse). The queue takes precedence.
type MockClient struct {
	mu        sync.Mutex
	queue     []mockReply
	canned    map[string]string
	callCount int
}

type mockReply struct {
	text string
	err  error
}

// NewMockClient constructs an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{canned: make(map[string]string)}
}

// Enqueue schedules the next completion text.
func (m *MockClient) Enqueue(text string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{text: text})
	return m
}

// EnqueueError schedules the next completion to fail with err.
func (m *MockClient) EnqueueError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
	return m
}

// AddResponse registers a canned completion for a given last-message text.
func (m *MockClient) AddResponse(prompt, response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canned[prompt] = response
	return m
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.err != nil {
			return nil, next.err
		}
		return &Response{Text: next.text, Model: "mock"}, nil
	}

	var last string
	if n := len(req.Conversation); n > 0 {
		last = req.Conversation[n-1].Text
	}
	if text, ok := m.canned[last]; ok {
		return &Response{Text: text, Model: "mock"}, nil
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", last), Model: "mock"}, nil
}

// Info implements Client.
func (m *MockClient) Info() Info { return Info{Name: "mock", Provider: "mock"} }
