package ai

import (
	"fmt"
	"strings"
)

// MockProposal produces a deterministic placeholder proposal for
// environments without an API key. The output carries a visible note so a
// mock draft is never mistaken for a generated one.
func MockProposal(input ProposalInput) string {
	var sb strings.Builder

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString("Thank you for the opportunity to work with ")
	sb.WriteString(input.ClientName)
	if input.CompanyName != "" {
		fmt.Fprintf(&sb, " at %s", input.CompanyName)
	}
	fmt.Fprintf(&sb, " on %s.\n\n", input.EngagementTitle)
	sb.WriteString("Based on our intake conversation, I understand you're looking to achieve meaningful progress in your business. This proposal outlines how we'll work together to make that happen.\n\n")

	sb.WriteString("## Problem Statement\n\n")
	sb.WriteString("From your responses, I've identified several key challenges:\n")
	for i, r := range input.Responses {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", r.Question, truncate(r.Answer, 100))
	}
	sb.WriteString("\nThese challenges are holding you back from reaching your full potential.\n\n")

	sb.WriteString(`## Proposed Approach

I recommend a structured, collaborative approach:

1. **Discovery & Assessment** (Weeks 1-2)
   - Deep dive into your current situation
   - Identify quick wins and long-term opportunities
   - Establish clear success metrics

2. **Strategy Development** (Weeks 3-4)
   - Create actionable roadmap
   - Prioritize initiatives based on impact
   - Design implementation framework

3. **Implementation Support** (Ongoing)
   - Regular check-ins and accountability
   - Course correction as needed
   - Continuous progress tracking

## Expected Outcomes

By working together, you can expect:

- **Clarity**: A clear roadmap for achieving your goals
- **Progress**: Measurable improvements in key areas
- **Confidence**: Tools and frameworks to sustain momentum
- **Results**: Tangible business outcomes within 90 days

## Timeline & Milestones

- **Month 1**: Foundation and quick wins
- **Month 2**: Core strategy implementation
- **Month 3**: Optimization and handoff

Key checkpoint meetings every 2 weeks to ensure we're on track.

## Next Steps

If this approach resonates with you:

1. Review this proposal and share any questions
2. Schedule our kickoff session
3. Complete any pre-work assignments
4. Begin our engagement!

I'm excited about the opportunity to work together and confident we can achieve meaningful results.

---

**Note**: This is a MOCK proposal generated for development. Configure ANTHROPIC_API_KEY to use real AI generation.`)

	return sb.String()
}

// truncate shortens s to at most max runes, never splitting a multi-byte
// character
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
