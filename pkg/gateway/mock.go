package gateway

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	ChatID int64
	Text   string
}

// MockClient 可编排的网关 mock，实现 Client 接口。
// Script 按 chatID 预置结果序列，每次调用消费一个；耗尽后返回 OK。
type MockClient struct {
	mu     sync.Mutex
	Calls  []MockCall
	Script map[int64][]Outcome
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls:  make([]MockCall, 0),
		Script: make(map[int64][]Outcome),
	}
}

// Enqueue 为 chatID 追加一个预置结果
func (m *MockClient) Enqueue(chatID int64, outcomes ...Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Script[chatID] = append(m.Script[chatID], outcomes...)
}

func (m *MockClient) SendMessage(ctx context.Context, chatID int64, text string) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{ChatID: chatID, Text: text})

	queue := m.Script[chatID]
	if len(queue) == 0 {
		return OutcomeOK, nil
	}

	outcome := queue[0]
	m.Script[chatID] = queue[1:]

	switch outcome {
	case OutcomeBlocked:
		return OutcomeBlocked, errors.New("mock: bot was blocked by the user")
	case OutcomeTransient:
		return OutcomeTransient, errors.New("mock: too many requests")
	default:
		return OutcomeOK, nil
	}
}

// CallCount 返回 chatID 收到的调用次数
func (m *MockClient) CallCount(chatID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, call := range m.Calls {
		if call.ChatID == chatID {
			n++
		}
	}
	return n
}

var _ Client = (*MockClient)(nil)
