package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunnryd/fraudgate/internal/approval"
	fraudgateErrors "github.com/harunnryd/fraudgate/internal/errors"
	"github.com/harunnryd/fraudgate/internal/foundry"
	"github.com/harunnryd/fraudgate/internal/logger"
	"github.com/harunnryd/fraudgate/internal/mcptool"
)

const cancelGrace = 10 * time.Second

// Runner drives one agent run to a terminal status, answering tool-approval
// requests through the policy.
type Runner struct {
	client              *foundry.Client
	tool                *mcptool.ServerTool
	policy              *approval.Policy
	pollInterval        time.Duration
	maxTransientRetries int
}

func New(client *foundry.Client, tool *mcptool.ServerTool, policy *approval.Policy, pollInterval time.Duration, maxTransientRetries int) *Runner {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxTransientRetries < 0 {
		maxTransientRetries = 0
	}
	return &Runner{
		client:              client,
		tool:                tool,
		policy:              policy,
		pollInterval:        pollInterval,
		maxTransientRetries: maxTransientRetries,
	}
}

// Params describes one orchestration: the agent to create and the summary
// to process.
type Params struct {
	AgentName    string
	Instructions string
	Model        string
	Message      string
	KeepAgent    bool
	RunTimeout   time.Duration
}

// Outcome is everything the orchestration produced, collected for reporting.
type Outcome struct {
	Agent     *foundry.Agent
	Thread    *foundry.Thread
	Run       *foundry.Run
	Steps     []foundry.RunStep
	Messages  []foundry.Message
	Decisions []approval.Decision
}

// Orchestrate performs the full pipeline: create agent, thread and message,
// start a run, poll it to a terminal status, then collect steps and the
// transcript. The agent is deleted afterwards unless KeepAgent is set.
func (r *Runner) Orchestrate(ctx context.Context, params Params) (*Outcome, error) {
	agent, err := r.client.CreateAgent(ctx, foundry.CreateAgentRequest{
		Model:        params.Model,
		Name:         params.AgentName,
		Instructions: params.Instructions,
		Tools:        r.tool.Definitions(),
	})
	if err != nil {
		return nil, fraudgateErrors.Wrap(err, "create agent")
	}
	slog.Info("Created agent", "agent_id", agent.ID, "mcp_server", r.tool.ServerURL())

	if !params.KeepAgent {
		defer r.cleanupAgent(agent.ID)
	}

	thread, err := r.client.CreateThread(ctx, foundry.CreateThreadRequest{})
	if err != nil {
		return nil, fraudgateErrors.Wrap(err, "create thread")
	}
	ctx = logger.WithThreadID(ctx, thread.ID)
	slog.Info("Created thread", "thread_id", thread.ID)

	message, err := r.client.CreateMessage(ctx, thread.ID, foundry.CreateMessageRequest{
		Role:    foundry.RoleUser,
		Content: params.Message,
	})
	if err != nil {
		return nil, fraudgateErrors.Wrap(err, "create message")
	}
	slog.Info("Created message", "message_id", message.ID)

	run, err := r.client.CreateRun(ctx, thread.ID, foundry.CreateRunRequest{
		AgentID:       agent.ID,
		ToolResources: r.tool.Resources(),
	})
	if err != nil {
		return nil, fraudgateErrors.Wrap(err, "create run")
	}
	ctx = logger.WithRunID(ctx, run.ID)
	slog.Info("Created run", "run_id", run.ID)

	pollCtx := ctx
	if params.RunTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, params.RunTimeout)
		defer cancel()
	}

	run, err = r.Poll(pollCtx, thread.ID, run)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Agent:     agent,
		Thread:    thread,
		Run:       run,
		Decisions: r.policy.Trail(),
	}

	// Steps and transcript are collected on every terminal status so the
	// report shows what happened even for failed or cancelled runs.
	steps, err := r.client.ListRunSteps(ctx, thread.ID, run.ID)
	if err != nil {
		slog.Warn("Failed to list run steps", "run_id", logger.GetRunID(ctx), "error", err)
	} else {
		outcome.Steps = steps
	}

	messages, err := r.client.ListMessages(ctx, thread.ID, foundry.OrderAscending)
	if err != nil {
		slog.Warn("Failed to list messages", "thread_id", logger.GetThreadID(ctx), "error", err)
	} else {
		outcome.Messages = messages
	}

	return outcome, nil
}

// Poll re-fetches the run at the configured interval until it reaches a
// terminal status, approving pending tool calls on the way. Transient fetch
// failures are retried up to the configured budget; a requires_action state
// without tool calls cancels the run.
func (r *Runner) Poll(ctx context.Context, threadID string, run *foundry.Run) (*foundry.Run, error) {
	if run == nil {
		return nil, fraudgateErrors.InvalidInput("run is required")
	}

	retries := 0
	for !run.Status.Terminal() {
		if !run.Status.Known() {
			return nil, fraudgateErrors.Internal(fmt.Sprintf("run %s reported undocumented status %q", run.ID, run.Status))
		}

		select {
		case <-ctx.Done():
			r.cancelAbandonedRun(threadID, run.ID)
			return nil, ctx.Err()
		case <-time.After(r.pollInterval):
		}

		fetched, err := r.client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			if fraudgateErrors.IsRetryable(err) && retries < r.maxTransientRetries {
				retries++
				slog.Warn("Transient poll failure, retrying", "run_id", run.ID, "attempt", retries, "error", err)
				continue
			}
			return nil, fraudgateErrors.Wrap(err, "fetch run")
		}
		retries = 0
		run = fetched

		if run.Status == foundry.RunStatusRequiresAction {
			run, err = r.handleRequiredAction(ctx, threadID, run)
			if err != nil {
				return nil, err
			}
		}

		slog.Info("Current run status", "run_id", run.ID, "status", run.Status)
	}

	if run.Status == foundry.RunStatusFailed {
		slog.Error("Run failed", "run_id", run.ID, "last_error", run.LastError.String())
	}
	slog.Info("Run finished", "run_id", run.ID, "status", run.Status)
	return run, nil
}

func (r *Runner) handleRequiredAction(ctx context.Context, threadID string, run *foundry.Run) (*foundry.Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.Type != foundry.ActionSubmitToolApproval {
		// Some other action type; keep polling and let the platform settle it.
		return run, nil
	}

	calls := run.RequiredAction.PendingToolCalls()
	if len(calls) == 0 {
		slog.Warn("No tool calls provided - cancelling run", "run_id", run.ID)
		cancelled, err := r.client.CancelRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, fraudgateErrors.Wrap(err, "cancel run")
		}
		return cancelled, nil
	}

	approvals := make([]foundry.ToolApproval, 0, len(calls))
	for _, call := range calls {
		if call.Type != mcptool.ToolType {
			// Per-call problems are logged and skipped, never propagated.
			slog.Warn("Skipping tool call of unexpected type", "tool_call_id", call.ID, "type", call.Type)
			continue
		}
		verdict := r.policy.Decide(call)
		slog.Info("Submitting tool call verdict", "tool_call_id", call.ID, "tool", call.Name, "verdict", verdict)
		approvals = append(approvals, foundry.ToolApproval{
			ToolCallID: call.ID,
			Approve:    verdict == approval.VerdictApproved,
			Headers:    r.tool.Headers(),
		})
	}

	if len(approvals) == 0 {
		slog.Warn("No approvable tool calls - cancelling run", "run_id", run.ID)
		cancelled, err := r.client.CancelRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, fraudgateErrors.Wrap(err, "cancel run")
		}
		return cancelled, nil
	}

	submitted, err := r.client.SubmitToolApprovals(ctx, threadID, run.ID, approvals)
	if err != nil {
		if fraudgateErrors.IsRetryable(err) {
			// The next poll observes requires_action again and resubmits.
			slog.Warn("Transient approval submission failure", "run_id", run.ID, "error", err)
			return run, nil
		}
		return nil, fraudgateErrors.Wrap(err, "submit tool approvals")
	}
	return submitted, nil
}

// cancelAbandonedRun makes a best-effort cancel when the polling context is
// done, so the platform does not keep the run pending until expiry.
func (r *Runner) cancelAbandonedRun(threadID, runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelGrace)
	defer cancel()
	if _, err := r.client.CancelRun(ctx, threadID, runID); err != nil {
		slog.Warn("Failed to cancel abandoned run", "run_id", runID, "error", err)
	}
}

func (r *Runner) cleanupAgent(agentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelGrace)
	defer cancel()
	if err := r.client.DeleteAgent(ctx, agentID); err != nil {
		slog.Warn("Failed to delete agent", "agent_id", agentID, "error", err)
		return
	}
	slog.Info("Deleted agent", "agent_id", agentID)
}
