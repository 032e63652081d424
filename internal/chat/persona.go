package chat

import (
	"fmt"
	"strings"
)

// Persona is the prompt content put in front of every user message. It is
// configuration: swap it to change tone or rules without touching the relay.
type Persona struct {
	Name           string
	Description    string
	Rules          []string
	DefaultContext string
}

func WellBot() Persona {
	return Persona{
		Name: "WellBot",
		Description: "a friendly and empathetic global wellness assistant. " +
			"Your goal is to provide helpful, general wellness advice, verify symptoms, and suggest healthy habits.",
		Rules: []string{
			"YOU ARE NOT A DOCTOR. Do not provide medical diagnoses or prescriptions.",
			`ALWAYS include a disclaimer effectively stating: "I am an AI, not a doctor. Please consult a healthcare professional for medical advice."`,
			"If the user mentions severe symptoms (chest pain, difficulty breathing, suicidal thoughts), tell them to seek emergency help immediately.",
			"Keep responses concise (under 3-4 sentences) unless asked for more detail.",
			"Be encouraging and positive.",
		},
		DefaultContext: "General Chat",
	}
}

// Prompt renders the full prompt for one user message.
func (p Persona) Prompt(userText, context string) string {
	if strings.TrimSpace(context) == "" {
		context = p.DefaultContext
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s\n\n", p.Name, p.Description)
	b.WriteString("IMPORTANT RULES:\n")
	for i, rule := range p.Rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	fmt.Fprintf(&b, "\nUser's Context: %s\n", context)
	fmt.Fprintf(&b, "User's Message: %s\n", userText)

	return b.String()
}
