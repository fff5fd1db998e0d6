package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mjacobco/hvac-assistant/internal/availability"
	"github.com/mjacobco/hvac-assistant/internal/chat"
	"github.com/mjacobco/hvac-assistant/internal/observability/metrics"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// maxRangeDays bounds how many days a single tool call may fan out to.
const maxRangeDays = 14

// SessionStore is the transcript surface the orchestrator needs.
type SessionStore interface {
	AppendMessage(ctx context.Context, sessionID uuid.UUID, sender, text string) error
	History(ctx context.Context, sessionID uuid.UUID) ([]chat.Message, error)
}

// AvailabilityFetcher resolves open slots for one date. The production
// implementation goes over the public HTTP surface.
type AvailabilityFetcher interface {
	Slots(ctx context.Context, date string) ([]string, error)
}

// OrchestratorConfig carries the model invocation parameters.
type OrchestratorConfig struct {
	Model       string
	MaxTokens   int32
	Temperature float32
	Timeout     time.Duration
	Business    BusinessProfile
}

// Orchestrator drives one conversational turn: persist the user message,
// rebuild the prompt from history, run the model with the availability tool
// declared, execute at most one tool round trip, persist and return the
// final answer.
type Orchestrator struct {
	llm     LLMClient
	store   SessionStore
	slots   AvailabilityFetcher
	cfg     OrchestratorConfig
	metrics *metrics.ConversationMetrics
	tracer  trace.Tracer
	logger  *logging.Logger
}

// NewOrchestrator wires the turn orchestrator. llm may be nil, in which case
// every turn degrades to a static reply. m may be nil.
func NewOrchestrator(llm LLMClient, store SessionStore, slots AvailabilityFetcher, cfg OrchestratorConfig, m *metrics.ConversationMetrics, logger *logging.Logger) *Orchestrator {
	if store == nil {
		panic("assistant: session store required")
	}
	if slots == nil {
		panic("assistant: availability fetcher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		llm:     llm,
		store:   store,
		slots:   slots,
		cfg:     cfg,
		metrics: m,
		tracer:  otel.Tracer("hvac.internal.assistant"),
		logger:  logger,
	}
}

// Turn runs one user message through the model and returns the assistant
// reply. The tool loop is bounded at one round trip per turn.
func (o *Orchestrator) Turn(ctx context.Context, sessionID uuid.UUID, userText, sender string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "assistant.turn",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer span.End()

	start := time.Now()

	// Unconfigured backend: static reply, nothing persisted, no model call.
	if o.llm == nil {
		o.metrics.ObserveTurn("degraded", time.Since(start).Seconds())
		return o.notConfiguredReply(), nil
	}

	// Persist the user message first so context survives a failed model call.
	if err := o.store.AppendMessage(ctx, sessionID, sender, userText); err != nil {
		o.metrics.ObserveTurn("failed", time.Since(start).Seconds())
		return "", err
	}

	history, err := o.store.History(ctx, sessionID)
	if err != nil {
		o.metrics.ObserveTurn("failed", time.Since(start).Seconds())
		return "", err
	}

	req := o.baseRequest(historyToMessages(history))
	req.Tools = []ToolDeclaration{CheckAvailabilityTool()}

	resp, err := o.complete(ctx, req)
	if err != nil {
		o.logger.Warn("model call failed, degrading", "error", err, "session_id", sessionID)
		reply := o.degradedReply()
		o.persistReply(ctx, sessionID, reply)
		o.metrics.ObserveTurn("degraded", time.Since(start).Seconds())
		return reply, nil
	}

	outcome := "answered"
	reply := resp.Text

	if resp.ToolCall != nil {
		reply, err = o.runToolRoundTrip(ctx, req.Messages, resp.ToolCall)
		if err != nil {
			o.metrics.ObserveTurn("failed", time.Since(start).Seconds())
			return "", err
		}
		outcome = "tool_answered"
	}

	if err := o.store.AppendMessage(ctx, sessionID, chat.SenderAssistant, reply); err != nil {
		o.metrics.ObserveTurn("failed", time.Since(start).Seconds())
		return "", err
	}

	o.metrics.ObserveTurn(outcome, time.Since(start).Seconds())
	o.logger.Info("turn completed", "session_id", sessionID, "outcome", outcome)
	return reply, nil
}

// runToolRoundTrip executes the availability lookup and re-invokes the model
// with the tool result and no tools declared, so at most one call per turn.
func (o *Orchestrator) runToolRoundTrip(ctx context.Context, prior []ChatMessage, call *ToolCall) (string, error) {
	ctx, span := o.tracer.Start(ctx, "assistant.tool_call",
		trace.WithAttributes(attribute.String("tool.name", call.Name)))
	defer span.End()

	if call.Name != CheckAvailabilityToolName {
		o.metrics.ObserveToolCall(call.Name, "unknown")
		return "", fmt.Errorf("assistant: model requested unknown tool %q", call.Name)
	}

	args, err := parseAvailabilityArgs(call)
	if err != nil {
		o.metrics.ObserveToolCall(call.Name, "invalid_args")
		return "", err
	}

	days, err := availability.DatesInRange(args.StartDate, args.EndDate, maxRangeDays)
	if err != nil {
		o.metrics.ObserveToolCall(call.Name, "invalid_args")
		return "", fmt.Errorf("assistant: tool date range: %w", err)
	}

	byDate := make(map[string][]string, len(days))
	for _, day := range days {
		slots, err := o.slots.Slots(ctx, day)
		if err != nil {
			o.metrics.ObserveToolCall(call.Name, "failed")
			return "", fmt.Errorf("assistant: availability lookup for %s: %w", day, err)
		}
		byDate[day] = slots
	}
	o.metrics.ObserveToolCall(call.Name, "ok")

	payload, err := json.Marshal(map[string]any{
		"success":      true,
		"availability": byDate,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: serialize tool result: %w", err)
	}

	messages := append(append([]ChatMessage{}, prior...),
		ChatMessage{Role: ChatRoleAssistant, ToolCall: call},
		ChatMessage{Role: ChatRoleTool, ToolResult: &ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Content: string(payload),
		}},
	)

	// No tools on the second call: the loop bound is one round trip per turn.
	req := o.baseRequest(messages)

	resp, err := o.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("assistant: final completion after tool call: %w", err)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("assistant: model returned no text after tool result")
	}
	return resp.Text, nil
}

// complete invokes the model with the configured per-call timeout.
func (o *Orchestrator) complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	return o.llm.Complete(ctx, req)
}

func (o *Orchestrator) baseRequest(messages []ChatMessage) LLMRequest {
	return LLMRequest{
		Model:       o.cfg.Model,
		System:      []string{SystemPrompt(o.cfg.Business)},
		Messages:    messages,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}
}

// persistReply is best-effort; a degraded reply is still returned to the
// caller when the write fails.
func (o *Orchestrator) persistReply(ctx context.Context, sessionID uuid.UUID, reply string) {
	if err := o.store.AppendMessage(ctx, sessionID, chat.SenderAssistant, reply); err != nil {
		o.logger.Warn("degraded reply not persisted", "error", err, "session_id", sessionID)
	}
}

func (o *Orchestrator) notConfiguredReply() string {
	return fmt.Sprintf("Chat is not configured yet. Please call %s at %s to schedule service.",
		o.cfg.Business.Name, o.cfg.Business.Phone)
}

func (o *Orchestrator) degradedReply() string {
	return fmt.Sprintf("I'm having trouble responding right now. Please call %s at %s and we'll take care of you.",
		o.cfg.Business.Name, o.cfg.Business.Phone)
}

// historyToMessages maps transcript senders onto model-native roles. Anything
// that is not the assistant becomes a user message.
func historyToMessages(history []chat.Message) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		role := ChatRoleUser
		if msg.Sender == chat.SenderAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}
	return messages
}
