package chat

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/chains"
)

// QA is a question with an optional known answer.
type QA struct {
	Question string
	Answer   string
}

// BuildConversation turns Q&A pairs into messages after the system prompt.
// Pairs without an answer contribute only the question.
func BuildConversation(system string, pairs ...QA) []llms.MessageContent {
	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, system)}
	for _, p := range pairs {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, p.Question))
		if p.Answer != "" {
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, p.Answer))
		}
	}
	return msgs
}

// UseCase is a scripted message list.
type UseCase struct {
	Name     string
	Title    string
	Messages []llms.MessageContent
}

// Run sends the use case to model.
func (u UseCase) Run(ctx context.Context, model llms.Model, opts ...llms.CallOption) (string, error) {
	return chains.Generate(ctx, model, u.Messages, opts...)
}

const reviewedCode = `
def calculate_area(length, width):
    return length * width

result = calculate_area(5, 10)
print(result)
`

// UseCases returns the message examples in presentation order.
func UseCases() []UseCase {
	system := func(s string) llms.MessageContent { return llms.TextParts(llms.ChatMessageTypeSystem, s) }
	human := func(s string) llms.MessageContent { return llms.TextParts(llms.ChatMessageTypeHuman, s) }
	ai := func(s string) llms.MessageContent { return llms.TextParts(llms.ChatMessageTypeAI, s) }

	return []UseCase{
		{
			Name:  "math_tutor",
			Title: "Math Tutor with System Prompt",
			Messages: []llms.MessageContent{
				system("You are a helpful math tutor. Explain your reasoning step by step with maths concepts used and keep answers concise."),
				human("What is 256 divided by 7?"),
			},
		},
		{
			Name:  "cooking",
			Title: "Multi-turn Conversation with Context",
			Messages: []llms.MessageContent{
				system("You are a cooking assistant. Give brief, practical cooking advice."),
				human("How do I make pasta?"),
				ai("1. Boil salted water 2. Add pasta 3. Cook 8-12 minutes 4. Drain 5. Add sauce"),
				human("What if I want to make it healthier?"),
			},
		},
		{
			Name:  "code_review",
			Title: "Role-based Conversation (Code Review)",
			Messages: []llms.MessageContent{
				system("You are a senior Python developer reviewing code. Focus on best practices and improvements."),
				human(reviewedCode),
			},
		},
		{
			Name:  "sentiment",
			Title: "Few-shot Learning (Sentiment Analysis)",
			Messages: []llms.MessageContent{
				system("Classify the sentiment of text as: POSITIVE, NEGATIVE, or NEUTRAL. Be concise. and provide only the single label."),
				human("I love this product! It works perfectly."),
				ai("POSITIVE"),
				human("This is okay, nothing special."),
				ai("NEUTRAL"),
				human("I hate about the new features coming next month!"),
			},
		},
		{
			Name:  "creative_writing",
			Title: "Creative Writing with Constraints",
			Messages: []llms.MessageContent{
				system("You are a creative writer. Write exactly 2 sentences. Be imaginative but concise."),
				human("Write a short story about a robot learning to paint"),
			},
		},
		{
			Name:  "plants",
			Title: "Building Conversation Dynamically",
			Messages: BuildConversation("You are a plant expert. Give practical gardening advice.",
				QA{
					Question: "How often should I water my houseplants?",
					Answer:   "Check soil moisture. Most houseplants need water when top inch is dry, usually 1-2 times per week.",
				},
				QA{Question: "My plant leaves are turning yellow. What should I do?"},
			),
		},
	}
}
