package ai

import (
	"fmt"
	"strings"
)

// Instruction selects the text transformation performed by ProcessText.
type Instruction string

const (
	InstructionRefine    Instruction = "REFINE"
	InstructionSummarize Instruction = "SUMMARIZE"
)

// ParseInstruction defaults to REFINE when raw is blank.
func ParseInstruction(raw string) (Instruction, bool) {
	switch Instruction(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", InstructionRefine:
		return InstructionRefine, true
	case InstructionSummarize:
		return InstructionSummarize, true
	}
	return "", false
}

const refineSystemPrompt = `Rewrite the following technical support issue so it is professional, structured and clear.
Use the format:
Context: [brief explanation]
Problem: [what is not working]
Impact: [how this affects the user]

Keep a neutral, technical tone.`

const summarizeSystemPrompt = `Summarize the text below concisely in a single paragraph, focusing on the key points for a support agent.`

const analysisSystemPrompt = `Act as a technical support specialist. Analyze the ticket below and return a JSON object with:
{
  "title": "(string: a short, direct, professional title for the ticket)",
  "sentiment": "(string: Positive, Neutral or Frustrated/Urgent)",
  "priority": "(string: LOW, MEDIUM, HIGH, CRITICAL)",
  "category": "(string: choose one of: [%s]. If none fits, suggest a new one)",
  "diagnosis": "(technical summary of the likely cause, at most 2 lines)",
  "suggested_solution": "(step by step for the agent to resolve it)"
}
Return ONLY the JSON.`

// TextPrompt builds the prompt for ProcessText.
func TextPrompt(text string, instruction Instruction) Prompt {
	system := refineSystemPrompt
	if instruction == InstructionSummarize {
		system = summarizeSystemPrompt
	}
	return Prompt{System: system, User: "Original text: " + text}
}

// AnalysisPrompt builds the enrichment prompt listing the organization's categories.
func AnalysisPrompt(title, description string, categories []string) Prompt {
	return Prompt{
		System: fmt.Sprintf(analysisSystemPrompt, strings.Join(categories, ", ")),
		User:   "Ticket: " + title + " - " + description,
	}
}
