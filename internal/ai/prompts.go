package ai

import (
	"fmt"
	"strings"
	"time"

	"consulting-os/internal/models"
)

// SystemPrompt frames every drafting request
const SystemPrompt = `You are an AI assistant helping a professional management consultant.

Your role is to help create high-quality, professional consulting deliverables based on client information.

Style Guidelines:
- Professional but warm and approachable
- Clear, actionable, and client-focused
- Use active voice and direct language
- Avoid jargon unless necessary
- Structure content with clear headings and bullets

Format Guidelines:
- Use Markdown formatting
- Use ## for main headings, ### for subheadings
- Use **bold** for emphasis
- Use bullet points for lists
- Use > blockquotes for important callouts
- Keep paragraphs concise (3-4 sentences max)

Remember: You are drafting content for the consultant to review and approve. Be thorough but allow room for the consultant's expertise and personalization.`

// ProposalInput carries everything the proposal prompt needs
type ProposalInput struct {
	ClientName            string
	CompanyName           string
	Industry              string
	EngagementTitle       string
	EngagementDescription string
	Responses             []models.IntakeResponse
}

// BuildProposalPrompt renders the prompt for drafting an engagement proposal
func BuildProposalPrompt(input ProposalInput) string {
	var sb strings.Builder

	sb.WriteString("Create a professional consulting proposal based on this client intake.\n\n")

	sb.WriteString("## Client Information\n")
	clientName := input.ClientName
	if clientName == "" {
		clientName = "Not provided"
	}
	fmt.Fprintf(&sb, "- Name: %s\n", clientName)
	if input.CompanyName != "" {
		fmt.Fprintf(&sb, "- Company: %s\n", input.CompanyName)
	}
	if input.Industry != "" {
		fmt.Fprintf(&sb, "- Industry: %s\n", input.Industry)
	}

	sb.WriteString("\n## Engagement\n")
	title := input.EngagementTitle
	if title == "" {
		title = "Consulting Engagement"
	}
	fmt.Fprintf(&sb, "- Title: %s\n", title)
	if input.EngagementDescription != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", input.EngagementDescription)
	}

	sb.WriteString("\n## Client Responses\n\n")
	for i, r := range input.Responses {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		answer := r.Answer
		if answer == "" {
			answer = "No response"
		}
		fmt.Fprintf(&sb, "**%s**\n%s", r.Question, answer)
	}

	sb.WriteString(`

---

Based on the above information, create a comprehensive consulting proposal with the following sections:

## 1. Executive Summary
A concise overview (2-3 paragraphs) that captures:
- The client's current situation and key challenges
- What success looks like for this engagement
- Why you're uniquely positioned to help

## 2. Problem Statement
Clearly articulate:
- The core challenges the client is facing
- Why these challenges matter (business impact)
- What happens if these challenges aren't addressed

## 3. Proposed Approach
Detail your recommended approach:
- Methodology and framework you'll use
- Key phases or milestones
- How you'll work together (cadence, communication)
- Specific deliverables the client can expect

## 4. Expected Outcomes
Describe measurable outcomes:
- Specific results the client should expect
- How you'll measure success
- Timeline for achieving these outcomes

## 5. Timeline & Milestones
Outline:
- Estimated duration of engagement
- Key milestones and checkpoints
- Important dependencies or prerequisites

## 6. Next Steps
Clear action items:
- What happens if the client accepts this proposal
- First steps to get started
- Any decisions the client needs to make

---

Guidelines:
- Keep the total proposal between 800-1200 words
- Be specific and actionable - avoid generic consultant speak
- Tailor everything to this client's specific situation
- Use their language and terminology from the intake responses
- Make it easy to say "yes" - be clear about value and next steps
- End with optimism and confidence

Format the proposal in clean Markdown that's easy to read and professional.`)

	return sb.String()
}

// SummaryInput carries everything the session summary prompt needs
type SummaryInput struct {
	SessionNumber   int
	ClientName      string
	EngagementTitle string
	ScheduledAt     *time.Time
	DurationMinutes int
	Notes           string
}

// BuildSessionSummaryPrompt renders the prompt for drafting a session summary
// from raw consultant notes.
func BuildSessionSummaryPrompt(input SummaryInput) string {
	var sb strings.Builder

	sb.WriteString("Create a professional session summary based on these raw consultant notes from a consulting session.\n\n")

	sb.WriteString("## Session Details\n")
	fmt.Fprintf(&sb, "- Session Number: %d\n", input.SessionNumber)
	clientName := input.ClientName
	if clientName == "" {
		clientName = "Client"
	}
	fmt.Fprintf(&sb, "- Client: %s\n", clientName)
	title := input.EngagementTitle
	if title == "" {
		title = "Consulting Engagement"
	}
	fmt.Fprintf(&sb, "- Engagement: %s\n", title)
	if input.ScheduledAt != nil {
		fmt.Fprintf(&sb, "- Date: %s\n", input.ScheduledAt.Format("1/2/2006"))
	}
	if input.DurationMinutes > 0 {
		fmt.Fprintf(&sb, "- Duration: %d minutes\n", input.DurationMinutes)
	}

	sb.WriteString("\n## Raw Consultant Notes\n\n")
	sb.WriteString(input.Notes)

	sb.WriteString(`

---

Based on the above notes, create a polished session summary with the following sections:

## Session Overview
A brief 2-3 sentence summary of what was covered in this session.

## Key Discussion Points
Bullet points of the main topics discussed:
- Use clear, specific language
- Organize by theme or importance
- Include relevant context

## Insights & Observations
Important insights that emerged:
- Client's current state and progress
- Challenges or blockers identified
- Wins or breakthroughs
- Patterns or themes worth noting

## Action Items
Clear, specific next steps with who is responsible:
- Format as checkbox list
- Be specific about what needs to be done
- Note deadlines if mentioned in notes

## Recommendations
Your professional recommendations for the client:
- Based on what was discussed
- Prioritized (most important first)
- Actionable and specific

## Next Session
If discussed, include:
- Topics to cover next time
- Preparation the client should do
- Any decisions that need to be made

---

Guidelines:
- Keep the summary between 400-600 words
- Be objective and professional
- Use the client's own words and terminology when possible
- Make insights actionable
- Highlight progress and wins to maintain momentum
- Be honest about challenges but frame constructively

Also extract 3-5 action items in this JSON format (return in a separate code block):
` + "```json" + `
{
  "actions": [
    {
      "title": "Action item title",
      "description": "More details if needed",
      "assigned_to": "client" | "consultant" | "both",
      "due_date": "YYYY-MM-DD" (if mentioned, otherwise null)
    }
  ]
}
` + "```" + `

Format the summary in clean Markdown.`)

	return sb.String()
}

// ProgressInput carries everything the progress update prompt needs
type ProgressInput struct {
	ClientName      string
	EngagementTitle string
	RecentSessions  int
	Goals           []models.Goal
	Actions         []models.Action
}

// BuildProgressUpdatePrompt renders the prompt for drafting a client
// progress update from goal and action data.
func BuildProgressUpdatePrompt(input ProgressInput) string {
	var completedActions, pendingActions []models.Action
	for _, a := range input.Actions {
		if a.Status == "completed" {
			completedActions = append(completedActions, a)
		} else {
			pendingActions = append(pendingActions, a)
		}
	}

	var achievedGoals, activeGoals []models.Goal
	for _, g := range input.Goals {
		switch g.Status {
		case "achieved":
			achievedGoals = append(achievedGoals, g)
		case "active":
			activeGoals = append(activeGoals, g)
		}
	}

	var sb strings.Builder

	sb.WriteString("Create a motivating progress update for a client based on their recent activity.\n\n")

	sb.WriteString("## Engagement\n")
	clientName := input.ClientName
	if clientName == "" {
		clientName = "Client"
	}
	fmt.Fprintf(&sb, "- Client: %s\n", clientName)
	title := input.EngagementTitle
	if title == "" {
		title = "Consulting Engagement"
	}
	fmt.Fprintf(&sb, "- Engagement: %s\n", title)
	fmt.Fprintf(&sb, "- Recent Sessions: %d\n", input.RecentSessions)

	sb.WriteString("\n## Goals Progress\n")
	fmt.Fprintf(&sb, "Active Goals (%d):\n", len(activeGoals))
	for _, g := range activeGoals {
		line := "- " + g.Title
		if pct, ok := g.Progress(); ok {
			line += fmt.Sprintf(" (%d%% of target)", pct)
		}
		if g.DueDate != nil {
			line += fmt.Sprintf(" (Target: %s)", g.DueDate.Format("2006-01-02"))
		}
		sb.WriteString(line + "\n")
	}

	fmt.Fprintf(&sb, "\nAchieved Goals (%d):\n", len(achievedGoals))
	for _, g := range achievedGoals {
		fmt.Fprintf(&sb, "- ✓ %s\n", g.Title)
	}

	sb.WriteString("\n## Actions Status\n")
	fmt.Fprintf(&sb, "Completed (%d):\n", len(completedActions))
	for i, a := range completedActions {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- ✓ %s\n", a.Title)
	}

	fmt.Fprintf(&sb, "\nPending (%d):\n", len(pendingActions))
	for i, a := range pendingActions {
		if i >= 5 {
			break
		}
		if a.DueDate != nil {
			fmt.Fprintf(&sb, "- %s (Due: %s)\n", a.Title, a.DueDate.Format("2006-01-02"))
		} else {
			fmt.Fprintf(&sb, "- %s\n", a.Title)
		}
	}

	sb.WriteString(`
---

Create an encouraging progress update (300-500 words) that:

## 1. Celebrates Wins
- Highlight completed actions and achieved goals
- Be specific about what was accomplished
- Acknowledge the effort and progress

## 2. Shows Momentum
- Connect recent activities to larger goals
- Show how small wins add up
- Maintain positive, forward-looking tone

## 3. Gentle Accountability
- Note pending actions without being pushy
- Reframe challenges as opportunities
- Suggest focus areas for the next period

## 4. Next Steps
- 2-3 specific recommendations
- Build on current momentum
- Keep it achievable and motivating

Guidelines:
- Be genuinely encouraging (not fake cheerleader)
- Use data (numbers, dates) to show concrete progress
- Keep tone warm and supportive
- End with confidence and forward momentum

Format in Markdown with clear sections.`)

	return sb.String()
}
