package ai

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// SystemPrompt frames every companion conversation.
const SystemPrompt = `You are MindEase, a warm and empathetic mental health support assistant for students. ` +
	`Provide varied, personalized and contextual mental health support. ` +
	`If a user asks about topics outside mental health, respond briefly and gently remind them that your focus is mental health support.`
