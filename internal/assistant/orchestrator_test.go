package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjacobco/hvac-assistant/internal/chat"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

type scriptedLLM struct {
	responses []LLMResponse
	errs      []error
	requests  []LLMRequest
}

func (s *scriptedLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return LLMResponse{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return LLMResponse{}, errors.New("scriptedLLM: no response scripted")
}

type memoryStore struct {
	messages  map[uuid.UUID][]chat.Message
	appendErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{messages: map[uuid.UUID][]chat.Message{}}
}

func (m *memoryStore) AppendMessage(_ context.Context, sessionID uuid.UUID, sender, text string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if sender == "" {
		sender = chat.SenderUser
	}
	m.messages[sessionID] = append(m.messages[sessionID], chat.Message{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	})
	return nil
}

func (m *memoryStore) History(_ context.Context, sessionID uuid.UUID) ([]chat.Message, error) {
	return m.messages[sessionID], nil
}

type recordingFetcher struct {
	slots map[string][]string
	err   error
	calls []string
}

func (f *recordingFetcher) Slots(_ context.Context, date string) ([]string, error) {
	f.calls = append(f.calls, date)
	if f.err != nil {
		return nil, f.err
	}
	return f.slots[date], nil
}

func testConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Model:       "test-model",
		MaxTokens:   500,
		Temperature: 0.7,
		Business: BusinessProfile{
			Name:        "M. Jacob Company",
			Owner:       "Mark Jacob",
			Phone:       "412-512-0425",
			ServiceArea: "Pittsburgh",
		},
	}
}

func newTestOrchestrator(llm LLMClient, store SessionStore, slots AvailabilityFetcher) *Orchestrator {
	return NewOrchestrator(llm, store, slots, testConfig(), nil, logging.NewText("error"))
}

func TestTurnDirectAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "We offer furnace repair and A/C service."}}}
	store := newMemoryStore()
	fetcher := &recordingFetcher{}
	o := newTestOrchestrator(llm, store, fetcher)

	sessionID := uuid.New()
	reply, err := o.Turn(context.Background(), sessionID, "What services do you offer?", "user")
	require.NoError(t, err)
	assert.Equal(t, "We offer furnace repair and A/C service.", reply)

	require.Len(t, store.messages[sessionID], 2)
	assert.Equal(t, chat.SenderUser, store.messages[sessionID][0].Sender)
	assert.Equal(t, "What services do you offer?", store.messages[sessionID][0].Text)
	assert.Equal(t, chat.SenderAssistant, store.messages[sessionID][1].Sender)
	assert.Equal(t, reply, store.messages[sessionID][1].Text)

	assert.Empty(t, fetcher.calls)
	require.Len(t, llm.requests, 1)
	require.Len(t, llm.requests[0].Tools, 1)
	assert.Equal(t, CheckAvailabilityToolName, llm.requests[0].Tools[0].Name)
}

func TestTurnToolRoundTrip(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{ToolCall: &ToolCall{
			ID:   "call-1",
			Name: CheckAvailabilityToolName,
			Arguments: map[string]any{
				"startDate": "2026-02-10",
				"endDate":   "2026-02-11",
			},
		}},
		{Text: "Tuesday has 08:00 and 09:00 open."},
	}}
	store := newMemoryStore()
	fetcher := &recordingFetcher{slots: map[string][]string{
		"2026-02-10": {"08:00", "09:00"},
		"2026-02-11": {"13:00"},
	}}
	o := newTestOrchestrator(llm, store, fetcher)

	sessionID := uuid.New()
	reply, err := o.Turn(context.Background(), sessionID, "What times are open next week?", "user")
	require.NoError(t, err)
	assert.Equal(t, "Tuesday has 08:00 and 09:00 open.", reply)

	// One availability call per day in the requested range.
	assert.Equal(t, []string{"2026-02-10", "2026-02-11"}, fetcher.calls)

	// Exactly two new messages regardless of the tool round trip.
	require.Len(t, store.messages[sessionID], 2)
	assert.Equal(t, chat.SenderAssistant, store.messages[sessionID][1].Sender)

	// The second completion carries the tool result and declares no tools.
	require.Len(t, llm.requests, 2)
	assert.Empty(t, llm.requests[1].Tools)
	last := llm.requests[1].Messages[len(llm.requests[1].Messages)-1]
	assert.Equal(t, ChatRoleTool, last.Role)
	require.NotNil(t, last.ToolResult)
	assert.Contains(t, last.ToolResult.Content, "2026-02-10")
	assert.Contains(t, last.ToolResult.Content, "08:00")
}

func TestTurnNotConfigured(t *testing.T) {
	store := newMemoryStore()
	o := newTestOrchestrator(nil, store, &recordingFetcher{})

	sessionID := uuid.New()
	reply, err := o.Turn(context.Background(), sessionID, "hello", "user")
	require.NoError(t, err)
	assert.Contains(t, reply, "not configured")
	assert.Contains(t, reply, "412-512-0425")

	assert.Empty(t, store.messages[sessionID])
}

func TestTurnModelFailureDegrades(t *testing.T) {
	llm := &scriptedLLM{errs: []error{errors.New("backend unreachable")}}
	store := newMemoryStore()
	o := newTestOrchestrator(llm, store, &recordingFetcher{})

	sessionID := uuid.New()
	reply, err := o.Turn(context.Background(), sessionID, "hello", "user")
	require.NoError(t, err)
	assert.Contains(t, reply, "412-512-0425")

	// User message persisted before the model call, degraded reply after.
	require.Len(t, store.messages[sessionID], 2)
	assert.Equal(t, "hello", store.messages[sessionID][0].Text)
	assert.Equal(t, reply, store.messages[sessionID][1].Text)
}

func TestTurnAvailabilityFailurePropagates(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{ToolCall: &ToolCall{
			Name: CheckAvailabilityToolName,
			Arguments: map[string]any{
				"startDate": "2026-02-10",
				"endDate":   "2026-02-10",
			},
		}},
	}}
	store := newMemoryStore()
	fetcher := &recordingFetcher{err: errors.New("availability down")}
	o := newTestOrchestrator(llm, store, fetcher)

	sessionID := uuid.New()
	_, err := o.Turn(context.Background(), sessionID, "any times tomorrow?", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "availability down")

	// Intentional asymmetry: the user message survives, no answer is faked.
	require.Len(t, store.messages[sessionID], 1)
	assert.Equal(t, chat.SenderUser, store.messages[sessionID][0].Sender)
	require.Len(t, llm.requests, 1)
}

func TestTurnInvalidToolArguments(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{ToolCall: &ToolCall{
			Name: CheckAvailabilityToolName,
			Arguments: map[string]any{
				"startDate": "next tuesday",
				"endDate":   "2026-02-11",
			},
		}},
	}}
	store := newMemoryStore()
	fetcher := &recordingFetcher{}
	o := newTestOrchestrator(llm, store, fetcher)

	_, err := o.Turn(context.Background(), uuid.New(), "any times?", "user")
	require.Error(t, err)
	assert.Empty(t, fetcher.calls)
}

func TestTurnUnknownTool(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{ToolCall: &ToolCall{Name: "book_flight", Arguments: map[string]any{}}},
	}}
	o := newTestOrchestrator(llm, newMemoryStore(), &recordingFetcher{})

	_, err := o.Turn(context.Background(), uuid.New(), "book me a flight", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book_flight")
}

func TestTurnRangeFanOutIsCapped(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{
		{ToolCall: &ToolCall{
			Name: CheckAvailabilityToolName,
			Arguments: map[string]any{
				"startDate": "2026-02-01",
				"endDate":   "2026-03-15",
			},
		}},
		{Text: "Here are the open times."},
	}}
	fetcher := &recordingFetcher{slots: map[string][]string{}}
	o := newTestOrchestrator(llm, newMemoryStore(), fetcher)

	_, err := o.Turn(context.Background(), uuid.New(), "what's open?", "user")
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, maxRangeDays)
}

func TestTurnRebuildsRolesFromHistory(t *testing.T) {
	llm := &scriptedLLM{responses: []LLMResponse{{Text: "ok"}}}
	store := newMemoryStore()
	o := newTestOrchestrator(llm, store, &recordingFetcher{})

	sessionID := uuid.New()
	require.NoError(t, store.AppendMessage(context.Background(), sessionID, chat.SenderUser, "hi"))
	require.NoError(t, store.AppendMessage(context.Background(), sessionID, chat.SenderAssistant, "hello, how can I help?"))

	_, err := o.Turn(context.Background(), sessionID, "do you fix furnaces?", "user")
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	msgs := llm.requests[0].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, ChatRoleUser, msgs[0].Role)
	assert.Equal(t, ChatRoleAssistant, msgs[1].Role)
	assert.Equal(t, ChatRoleUser, msgs[2].Role)
	assert.Equal(t, "do you fix furnaces?", msgs[2].Content)

	require.Len(t, llm.requests[0].System, 1)
	assert.Contains(t, llm.requests[0].System[0], "M. Jacob Company")
}
