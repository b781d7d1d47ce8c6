package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockTransport is an in-memory Transport for tests. Responses are keyed by
// the exact command string; several responses for the same command are
// returned in order, the last one repeating.
type MockTransport struct {
	// OS is returned by GetOS. Defaults to "linux".
	OS string

	// OnExecute, if set, handles commands that have no registered response.
	OnExecute func(cmd string) (string, error)

	mu        sync.Mutex
	responses map[string][]mockResponse
	calls     []string
	closed    bool
}

type mockResponse struct {
	out string
	err error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		OS:        "linux",
		responses: make(map[string][]mockResponse),
	}
}

// AddResponse queues a successful output for cmd.
func (m *MockTransport) AddResponse(cmd, out string) *MockTransport {
	return m.add(cmd, mockResponse{out: out})
}

// AddError queues a failure for cmd.
func (m *MockTransport) AddError(cmd, out string, err error) *MockTransport {
	return m.add(cmd, mockResponse{out: out, err: err})
}

func (m *MockTransport) add(cmd string, r mockResponse) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = append(m.responses[cmd], r)
	return m
}

func (m *MockTransport) Execute(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	queue, ok := m.responses[cmd]
	if ok && len(queue) > 0 {
		r := queue[0]
		if len(queue) > 1 {
			m.responses[cmd] = queue[1:]
		}
		m.mu.Unlock()
		return r.out, r.err
	}
	handler := m.OnExecute
	m.mu.Unlock()

	if handler != nil {
		return handler(cmd)
	}
	return "", fmt.Errorf("mock transport: unexpected command %q", cmd)
}

func (m *MockTransport) GetOS(ctx context.Context) (string, error) {
	return m.OS, nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns the executed commands in order.
func (m *MockTransport) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Called reports whether cmd was executed.
func (m *MockTransport) Called(cmd string) bool {
	for _, c := range m.Calls() {
		if c == cmd {
			return true
		}
	}
	return false
}

// CalledWithPrefix counts executed commands starting with prefix.
func (m *MockTransport) CalledWithPrefix(prefix string) int {
	n := 0
	for _, c := range m.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
