package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/harunnryd/fraudgate/internal/approval"
	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/foundry"
	"github.com/harunnryd/fraudgate/internal/mcptool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform is a scripted agent platform: every GetRun pops the next
// status from the script, and submitted approvals are recorded.
type fakePlatform struct {
	t *testing.T

	mu            sync.Mutex
	script        []string
	getRunCalls   int
	failGetRuns   int
	approvals     [][]foundry.ToolApproval
	cancelled     bool
	agentDeleted  bool
	pendingCalls  []foundry.RequiredToolCall
	finalStatus   string
	lastErrorJSON string
}

func (f *fakePlatform) nextStatus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		return f.finalStatus
	}
	status := f.script[0]
	f.script = f.script[1:]
	return status
}

func (f *fakePlatform) runJSON(status string) string {
	body := map[string]interface{}{
		"id":        "run_1",
		"object":    "thread.run",
		"thread_id": "thread_1",
		"status":    status,
	}
	if status == "requires_action" {
		f.mu.Lock()
		calls := f.pendingCalls
		f.mu.Unlock()
		body["required_action"] = map[string]interface{}{
			"type": "submit_tool_approval",
			"submit_tool_approval": map[string]interface{}{
				"tool_calls": calls,
			},
		}
	}
	if status == "failed" && f.lastErrorJSON != "" {
		body["last_error"] = json.RawMessage(f.lastErrorJSON)
	}
	data, err := json.Marshal(body)
	require.NoError(f.t, err)
	return string(data)
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /assistants", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"asst_1","object":"assistant","name":"fraud-alert-agent","model":"gpt-4o"}`)
	})
	mux.HandleFunc("DELETE /assistants/asst_1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.agentDeleted = true
		f.mu.Unlock()
		fmt.Fprint(w, `{"id":"asst_1","deleted":true}`)
	})
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"thread_1","object":"thread"}`)
	})
	mux.HandleFunc("POST /threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg_1","object":"thread.message","thread_id":"thread_1","role":"user","content":[{"type":"text","text":{"value":"summary"}}]}`)
	})
	mux.HandleFunc("POST /threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.runJSON("queued"))
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.getRunCalls++
		fail := f.failGetRuns > 0
		if fail {
			f.failGetRuns--
		}
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"code":"server_busy","message":"try again"}}`)
			return
		}
		fmt.Fprint(w, f.runJSON(f.nextStatus()))
	})
	mux.HandleFunc("POST /threads/thread_1/runs/run_1/submit_tool_outputs", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ToolApprovals []foundry.ToolApproval `json:"tool_approvals"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.approvals = append(f.approvals, req.ToolApprovals)
		f.mu.Unlock()
		fmt.Fprint(w, f.runJSON("in_progress"))
	})
	mux.HandleFunc("POST /threads/thread_1/runs/run_1/cancel", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
		fmt.Fprint(w, f.runJSON("cancelling"))
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1/steps", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object":"list","data":[{"id":"step_1","run_id":"run_1","status":"completed","step_details":{"type":"tool_calls","tool_calls":[{"id":"call_1","type":"mcp","name":"create_fraud_alert"}]}}],"has_more":false}`)
	})
	mux.HandleFunc("GET /threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "asc", r.URL.Query().Get("order"))
		fmt.Fprint(w, `{"object":"list","data":[
			{"id":"msg_1","role":"user","content":[{"type":"text","text":{"value":"summary"}}]},
			{"id":"msg_2","role":"assistant","content":[{"type":"text","text":{"value":"Alert created."}}]}
		],"has_more":false}`)
	})
	return mux
}

func newTestRunner(t *testing.T, f *fakePlatform, mode approval.Mode) (*Runner, *mcptool.ServerTool) {
	t.Helper()
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	client, err := foundry.NewClient(server.URL, "v1", foundry.NewStaticTokenCredential("test-token"), foundry.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	tool, err := mcptool.NewServerTool("fraudalertmcp", "https://apim.example.net/fraud/mcp")
	require.NoError(t, err)
	tool.UpdateHeaders("Ocp-Apim-Subscription-Key", "sk-123")

	policy, err := approval.NewPolicy(mode, nil, nil)
	require.NoError(t, err)

	return New(client, tool, policy, time.Millisecond, 2), tool
}

func params() Params {
	return Params{
		AgentName:    "fraud-alert-agent",
		Instructions: "You are a Fraud Alert Management Agent.",
		Model:        "gpt-4o",
		Message:      "Please send a fraud alert from this transaction summary: tx-1 risk 92",
		RunTimeout:   5 * time.Second,
	}
}

func TestOrchestrateApprovesToolCallsAndCompletes(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"in_progress", "requires_action", "in_progress", "completed"},
		finalStatus: "completed",
		pendingCalls: []foundry.RequiredToolCall{
			{ID: "call_1", Type: "mcp", Name: "create_fraud_alert", ServerLabel: "fraudalertmcp"},
		},
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	outcome, err := r.Orchestrate(context.Background(), params())
	require.NoError(t, err)

	assert.Equal(t, foundry.RunStatusCompleted, outcome.Run.Status)
	require.Len(t, f.approvals, 1)
	require.Len(t, f.approvals[0], 1)
	assert.Equal(t, "call_1", f.approvals[0][0].ToolCallID)
	assert.True(t, f.approvals[0][0].Approve)
	assert.Equal(t, "sk-123", f.approvals[0][0].Headers["Ocp-Apim-Subscription-Key"])

	require.Len(t, outcome.Decisions, 1)
	assert.Equal(t, approval.VerdictApproved, outcome.Decisions[0].Verdict)
	require.Len(t, outcome.Steps, 1)
	require.Len(t, outcome.Messages, 2)
	assert.True(t, f.agentDeleted)
	assert.False(t, f.cancelled)
}

func TestOrchestrateKeepAgentSkipsCleanup(t *testing.T) {
	f := &fakePlatform{t: t, script: []string{"completed"}, finalStatus: "completed"}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	p := params()
	p.KeepAgent = true
	_, err := r.Orchestrate(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, f.agentDeleted)
}

func TestOrchestrateCancelsOnEmptyToolCalls(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"requires_action", "cancelled"},
		finalStatus: "cancelled",
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	outcome, err := r.Orchestrate(context.Background(), params())
	require.NoError(t, err)

	assert.True(t, f.cancelled)
	assert.Empty(t, f.approvals)
	assert.Equal(t, foundry.RunStatusCancelled, outcome.Run.Status)
}

func TestOrchestrateDeniedCallsAreSubmittedNotSkipped(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"requires_action", "failed"},
		finalStatus: "failed",
		pendingCalls: []foundry.RequiredToolCall{
			{ID: "call_1", Type: "mcp", Name: "create_fraud_alert"},
		},
		lastErrorJSON: `{"code":"tool_call_denied","message":"approval was declined"}`,
	}
	r, _ := newTestRunner(t, f, approval.ModeNever)

	outcome, err := r.Orchestrate(context.Background(), params())
	require.NoError(t, err)

	require.Len(t, f.approvals, 1)
	require.Len(t, f.approvals[0], 1)
	assert.False(t, f.approvals[0][0].Approve)

	assert.Equal(t, foundry.RunStatusFailed, outcome.Run.Status)
	assert.Equal(t, "tool_call_denied: approval was declined", outcome.Run.LastError.String())
}

func TestPollRetriesTransientFetchFailures(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"completed"},
		finalStatus: "completed",
		failGetRuns: 2,
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	run := &foundry.Run{ID: "run_1", ThreadID: "thread_1", Status: foundry.RunStatusQueued}
	final, err := r.Poll(context.Background(), "thread_1", run)
	require.NoError(t, err)
	assert.Equal(t, foundry.RunStatusCompleted, final.Status)
	assert.Equal(t, 3, f.getRunCalls)
}

func TestPollGivesUpAfterRetryBudget(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		finalStatus: "completed",
		failGetRuns: 10,
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	run := &foundry.Run{ID: "run_1", ThreadID: "thread_1", Status: foundry.RunStatusQueued}
	_, err := r.Poll(context.Background(), "thread_1", run)
	require.Error(t, err)
	assert.ErrorIs(t, err, fraudgateErrors.ErrTransient)
}

func TestPollRejectsUnknownStatus(t *testing.T) {
	f := &fakePlatform{t: t, finalStatus: "completed"}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	run := &foundry.Run{ID: "run_1", ThreadID: "thread_1", Status: foundry.RunStatus("warming_up")}
	_, err := r.Poll(context.Background(), "thread_1", run)
	require.Error(t, err)
	assert.ErrorIs(t, err, fraudgateErrors.ErrInternal)
}

func TestPollCancelsRunWhenContextEnds(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"in_progress", "in_progress", "in_progress", "in_progress"},
		finalStatus: "in_progress",
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	run := &foundry.Run{ID: "run_1", ThreadID: "thread_1", Status: foundry.RunStatusQueued}
	_, err := r.Poll(ctx, "thread_1", run)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, f.cancelled)
}

func TestHandleRequiredActionSkipsNonMCPCalls(t *testing.T) {
	f := &fakePlatform{
		t:           t,
		script:      []string{"requires_action", "cancelled"},
		finalStatus: "cancelled",
		pendingCalls: []foundry.RequiredToolCall{
			{ID: "call_1", Type: "function", Name: "local_tool"},
		},
	}
	r, _ := newTestRunner(t, f, approval.ModeAlways)

	run := &foundry.Run{ID: "run_1", ThreadID: "thread_1", Status: foundry.RunStatusQueued}
	final, err := r.Poll(context.Background(), "thread_1", run)
	require.NoError(t, err)

	// The only call is not approvable, so the run is cancelled instead.
	assert.Empty(t, f.approvals)
	assert.True(t, f.cancelled)
	assert.Equal(t, foundry.RunStatusCancelled, final.Status)
}
