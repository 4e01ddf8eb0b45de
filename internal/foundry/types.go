package foundry

import (
	"encoding/json"
)

// Agent is a server-side agent definition bound to a model deployment.
type Agent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	CreatedAt    int64             `json:"created_at"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Model        string            `json:"model"`
	Instructions string            `json:"instructions"`
	Tools        []ToolDefinition  `json:"tools,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Thread is an ordered conversation owned by the platform.
type Thread struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageRole is the author role of a thread message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single entry in a thread.
type Message struct {
	ID        string           `json:"id"`
	Object    string           `json:"object"`
	CreatedAt int64            `json:"created_at"`
	ThreadID  string           `json:"thread_id"`
	RunID     string           `json:"run_id,omitempty"`
	Role      MessageRole      `json:"role"`
	Content   []MessageContent `json:"content"`
}

// MessageContent is one content part of a message. Only text parts carry a
// value here; other part types are kept opaque.
type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

type MessageText struct {
	Value       string            `json:"value"`
	Annotations []json.RawMessage `json:"annotations,omitempty"`
}

// LastText returns the value of the last text part, if any.
func (m *Message) LastText() (string, bool) {
	for i := len(m.Content) - 1; i >= 0; i-- {
		if m.Content[i].Type == "text" && m.Content[i].Text != nil {
			return m.Content[i].Text.Value, true
		}
	}
	return "", false
}

// RunStatus is the lifecycle state of a run. The set is closed: a run moves
// monotonically through non-terminal states until it reaches exactly one
// terminal state.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the status ends the polling loop.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// Known reports whether the status belongs to the documented set.
func (s RunStatus) Known() bool {
	switch s {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction,
		RunStatusCancelling, RunStatusCompleted, RunStatusFailed,
		RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// Run is one execution of an agent against a thread.
type Run struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	CreatedAt      int64           `json:"created_at"`
	ThreadID       string          `json:"thread_id"`
	AgentID        string          `json:"assistant_id"`
	Status         RunStatus       `json:"status"`
	Model          string          `json:"model,omitempty"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
	StartedAt      int64           `json:"started_at,omitempty"`
	CompletedAt    int64           `json:"completed_at,omitempty"`
	FailedAt       int64           `json:"failed_at,omitempty"`
	CancelledAt    int64           `json:"cancelled_at,omitempty"`
}

// RunError is the terminal failure detail on a failed run.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RunError) String() string {
	if e == nil {
		return ""
	}
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

const ActionSubmitToolApproval = "submit_tool_approval"

// RequiredAction is set while a run waits on the caller.
type RequiredAction struct {
	Type               string              `json:"type"`
	SubmitToolApproval *SubmitToolApproval `json:"submit_tool_approval,omitempty"`
}

// PendingToolCalls returns the tool calls awaiting approval, or nil when the
// action is not a tool-approval request.
func (a *RequiredAction) PendingToolCalls() []RequiredToolCall {
	if a == nil || a.Type != ActionSubmitToolApproval || a.SubmitToolApproval == nil {
		return nil
	}
	return a.SubmitToolApproval.ToolCalls
}

type SubmitToolApproval struct {
	ToolCalls []RequiredToolCall `json:"tool_calls"`
}

// RequiredToolCall is a remote tool invocation the platform wants approved.
type RequiredToolCall struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Arguments   string `json:"arguments,omitempty"`
	ServerLabel string `json:"server_label,omitempty"`
}

// ToolApproval is the caller's verdict on a required tool call.
type ToolApproval struct {
	ToolCallID string            `json:"tool_call_id"`
	Approve    bool              `json:"approve"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// ToolDefinition declares a tool on an agent. Only the MCP shape is used.
type ToolDefinition struct {
	Type         string   `json:"type"`
	ServerLabel  string   `json:"server_label,omitempty"`
	ServerURL    string   `json:"server_url,omitempty"`
	AllowedTools []string `json:"allowed_tools,omitempty"`
}

// ToolResources carries per-run tool configuration.
type ToolResources struct {
	MCP []MCPToolResource `json:"mcp,omitempty"`
}

// MCPToolResource binds run-time headers and the approval requirement to an
// MCP server label declared on the agent.
type MCPToolResource struct {
	ServerLabel     string            `json:"server_label"`
	RequireApproval string            `json:"require_approval,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
}

// RunStep is one unit of work the platform performed during a run.
type RunStep struct {
	ID          string       `json:"id"`
	Object      string       `json:"object"`
	RunID       string       `json:"run_id"`
	ThreadID    string       `json:"thread_id"`
	Type        string       `json:"type"`
	Status      string       `json:"status"`
	StepDetails *StepDetails `json:"step_details,omitempty"`
	CreatedAt   int64        `json:"created_at"`
	CompletedAt int64        `json:"completed_at,omitempty"`
}

// StepDetails describes what a run step did: message creation, tool calls,
// or tool activity declarations.
type StepDetails struct {
	Type       string         `json:"type"`
	ToolCalls  []StepToolCall `json:"tool_calls,omitempty"`
	Activities []StepActivity `json:"activities,omitempty"`
}

// StepToolCall is a tool call recorded on a completed step.
type StepToolCall struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// StepActivity lists the remote tool functions the platform resolved,
// keyed by function name.
type StepActivity struct {
	Type  string                        `json:"type,omitempty"`
	Tools map[string]ActivityToolDetail `json:"tools,omitempty"`
}

type ActivityToolDetail struct {
	Description string              `json:"description,omitempty"`
	Parameters  *ActivityParameters `json:"parameters,omitempty"`
}

type ActivityParameters struct {
	Type       string                       `json:"type,omitempty"`
	Properties map[string]ActivityParameter `json:"properties,omitempty"`
	Required   []string                     `json:"required,omitempty"`
}

type ActivityParameter struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListOrder is the sort order for list operations.
type ListOrder string

const (
	OrderAscending  ListOrder = "asc"
	OrderDescending ListOrder = "desc"
)

type listEnvelope[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
	HasMore bool   `json:"has_more"`
}

type deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
