package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harunnryd/fraudgate/internal/runner"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

const separatorWidth = 50

// Renderer turns an orchestration outcome into the console report: run
// identifiers, the step/tool-call trace, approval decisions, and the
// conversation transcript.
type Renderer struct {
	headerStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	roleStyle     lipgloss.Style
	failedStyle   lipgloss.Style
	tableBorder   lipgloss.Style
	tableHeader   lipgloss.Style
	tableCellOdd  lipgloss.Style
	tableCellEven lipgloss.Style
}

func NewRenderer(color bool) *Renderer {
	r := &Renderer{
		headerStyle:   lipgloss.NewStyle(),
		labelStyle:    lipgloss.NewStyle(),
		roleStyle:     lipgloss.NewStyle(),
		failedStyle:   lipgloss.NewStyle(),
		tableBorder:   lipgloss.NewStyle(),
		tableHeader:   lipgloss.NewStyle().Padding(0, 1),
		tableCellOdd:  lipgloss.NewStyle().Padding(0, 1),
		tableCellEven: lipgloss.NewStyle().Padding(0, 1),
	}
	if color {
		purple := lipgloss.Color("99")
		gray := lipgloss.Color("245")
		lightGray := lipgloss.Color("241")
		red := lipgloss.Color("9")

		r.headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
		r.labelStyle = lipgloss.NewStyle().Foreground(gray)
		r.roleStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
		r.failedStyle = lipgloss.NewStyle().Foreground(red).Bold(true)
		r.tableBorder = lipgloss.NewStyle().Foreground(purple)
		r.tableHeader = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center).Padding(0, 1)
		r.tableCellOdd = lipgloss.NewStyle().Foreground(gray).Padding(0, 1)
		r.tableCellEven = lipgloss.NewStyle().Foreground(lightGray).Padding(0, 1)
	}
	return r
}

func (r *Renderer) Render(outcome *runner.Outcome) string {
	if outcome == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(r.headerStyle.Render("Fraud Alert Run"))
	b.WriteString("\n")
	if outcome.Agent != nil {
		b.WriteString(r.labelStyle.Render("Agent:  ") + outcome.Agent.ID + "\n")
	}
	if outcome.Thread != nil {
		b.WriteString(r.labelStyle.Render("Thread: ") + outcome.Thread.ID + "\n")
	}
	if outcome.Run != nil {
		b.WriteString(r.labelStyle.Render("Run:    ") + outcome.Run.ID + "\n")
		b.WriteString(r.labelStyle.Render("Status: ") + string(outcome.Run.Status) + "\n")
		if outcome.Run.LastError != nil {
			b.WriteString(r.failedStyle.Render("Run failed: "+outcome.Run.LastError.String()) + "\n")
		}
	}

	r.renderSteps(&b, outcome)
	r.renderDecisions(&b, outcome)
	r.renderTranscript(&b, outcome)

	return b.String()
}

func (r *Renderer) renderSteps(b *strings.Builder, outcome *runner.Outcome) {
	if len(outcome.Steps) == 0 {
		return
	}

	b.WriteString("\n" + r.headerStyle.Render("Run Steps") + "\n")
	for _, step := range outcome.Steps {
		fmt.Fprintf(b, "Step %s status: %s\n", step.ID, step.Status)
		if step.StepDetails == nil {
			continue
		}

		if len(step.StepDetails.ToolCalls) > 0 {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(r.tableBorder).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return r.tableHeader
					case row%2 == 0:
						return r.tableCellEven
					default:
						return r.tableCellOdd
					}
				}).
				Headers("Tool Call ID", "Type", "Name")
			for _, call := range step.StepDetails.ToolCalls {
				t.Row(call.ID, call.Type, call.Name)
			}
			b.WriteString(t.String() + "\n")
		}

		for _, activity := range step.StepDetails.Activities {
			names := make([]string, 0, len(activity.Tools))
			for name := range activity.Tools {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				detail := activity.Tools[name]
				fmt.Fprintf(b, "  The function %s with description %q will be called\n", name, detail.Description)
				if detail.Parameters == nil || len(detail.Parameters.Properties) == 0 {
					b.WriteString("  This function has no parameters\n")
					continue
				}
				b.WriteString("  Function parameters:\n")
				params := make([]string, 0, len(detail.Parameters.Properties))
				for param := range detail.Parameters.Properties {
					params = append(params, param)
				}
				sort.Strings(params)
				for _, param := range params {
					prop := detail.Parameters.Properties[param]
					fmt.Fprintf(b, "      %s (%s): %s\n", param, prop.Type, prop.Description)
				}
			}
		}
	}
}

func (r *Renderer) renderDecisions(b *strings.Builder, outcome *runner.Outcome) {
	if len(outcome.Decisions) == 0 {
		return
	}

	b.WriteString("\n" + r.headerStyle.Render("Tool Approvals") + "\n")
	for _, d := range outcome.Decisions {
		fmt.Fprintf(b, "%s %s (%s): %s\n", d.Verdict, d.Tool, d.ToolCallID, d.Reason)
	}
}

func (r *Renderer) renderTranscript(b *strings.Builder, outcome *runner.Outcome) {
	if len(outcome.Messages) == 0 {
		return
	}

	separator := strings.Repeat("-", separatorWidth)
	b.WriteString("\n" + r.headerStyle.Render("Conversation") + "\n")
	b.WriteString(separator + "\n")
	for _, msg := range outcome.Messages {
		text, ok := msg.LastText()
		if !ok {
			continue
		}
		role := strings.ToUpper(string(msg.Role))
		b.WriteString(r.roleStyle.Render(role+":") + " " + text + "\n")
		b.WriteString(separator + "\n")
	}
}
