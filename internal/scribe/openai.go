package scribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var toneInstructions = map[string]string{
	"warm":     "Write in a warm, gentle, and comforting tone. Use soft language that feels like a loving embrace.",
	"honest":   "Write in a direct, authentic, and straightforward tone. Be genuine and real without being harsh.",
	"poetic":   "Write in a lyrical, beautiful, and evocative tone. Use rich imagery and metaphorical language.",
	"humorous": "Write in a light, playful, and gently funny tone. Find the joy and lightness in the memory.",
	"raw":      "Write in an unfiltered, real, and emotionally honest tone. Don't shy away from difficult feelings.",
}

// OpenAIGenerator produces prose through an OpenAI-compatible chat API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(cfg Config) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model}
}

func (g *OpenAIGenerator) Draft(ctx context.Context, req DraftRequest) (string, error) {
	instruction, ok := toneInstructions[req.Tone]
	if !ok {
		instruction = toneInstructions["warm"]
	}

	system := fmt.Sprintf(`You are a skilled memoir writer helping someone craft their personal memories into beautiful prose.

Your task is to take their raw memory response and transform it into a well-written memoir-style passage.

Guidelines:
- %s
- Keep it personal and intimate
- Preserve the authenticity of their experience
- Use sensory details they provided
- Write in first person
- Keep it concise but meaningful (2-4 paragraphs)
- Don't add details they didn't provide
- Focus on the emotional truth of the memory

The original prompt was: "%s"
Their response: "%s"

Transform this into a beautiful memoir passage.`, instruction, req.Prompt, req.Response)

	return g.complete(ctx, system,
		fmt.Sprintf("Please write this memory as a memoir passage in a %s tone.", req.Tone))
}

func (g *OpenAIGenerator) Introduction(ctx context.Context, req IntroRequest) (string, error) {
	system := `You are a skilled memoir writer creating chapter introductions. Your task is to write a compelling introduction that:

1. Sets the emotional tone for the chapter
2. Connects the memories thematically
3. Provides context for why these memories belong together
4. Uses a reflective, memoir-style voice
5. Is 2-3 paragraphs long
6. Feels personal and authentic

Write in first person and maintain a warm, reflective tone that draws the reader into the chapter.`

	var descriptions strings.Builder
	for i, m := range req.Memories {
		fmt.Fprintf(&descriptions, "%d. %s: %s...\n", i+1, m.Prompt, truncate(m.Response, 100))
	}
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = "No specific description provided"
	}

	user := fmt.Sprintf(`Write a chapter introduction for "%s".

Chapter description: %s

The chapter contains these memories:
%s
Create an introduction that weaves these memories together thematically and emotionally.`,
		req.Title, description, descriptions.String())

	return g.complete(ctx, system, user)
}

func (g *OpenAIGenerator) Transition(ctx context.Context, req TransitionRequest) (string, error) {
	system := `You are a skilled memoir writer creating smooth transitions between memories within a chapter. Your task is to:

1. Create a natural bridge between two memories
2. Maintain narrative flow and emotional continuity
3. Keep it concise (1-2 sentences)
4. Use a reflective, memoir-style voice
5. Connect themes, emotions, or lessons between the memories
6. Write in first person

The transition should feel natural and help the reader move smoothly from one memory to the next.`

	user := fmt.Sprintf(`Create a transition between these two memories:

FIRST MEMORY:
Prompt: %s
Response: %s

SECOND MEMORY:
Prompt: %s
Response: %s

Write a brief, natural transition that connects these memories.`,
		req.From.Prompt, req.From.Response, req.To.Prompt, req.To.Response)

	return g.complete(ctx, system, user)
}

func (g *OpenAIGenerator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
