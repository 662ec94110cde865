// Package prompt assembles the constrained prompt sent to the LLM: either
// a canned instruction for a small set of trigger phrases, or a grounding
// template wrapping the retrieved context and the user's question.
package prompt

import (
	"context"
	"fmt"
	"strings"
)

// SystemPrompt is the fixed system turn for every completion.
const SystemPrompt = "You are an AI assistant restricted to answering questions only from the database."

// FallbackSentence is emitted verbatim by the model when the retrieved
// context does not contain the answer.
const FallbackSentence = "I don't have that information at the moment. This is a work-in-progress app, so check back soon for more updates! Is there anything else I can help you with?"

const groundedTemplate = `You are an AI assistant answering user questions based **only on the retrieved database information**.

%s

If the information is not in the retrieved information, respond with:
*"` + FallbackSentence + `"*

When answering, follow these structured guidelines:

## **Answering Guidelines**:
- **Provide links when available** (e.g., restaurant websites, tour bookings, car rentals).
- **Always include addresses** for hotels and restaurants if available.
- **Mention opening hours** if available for restaurants.
- **Give an overview** of places, towns, or activities when relevant.
- **Budget-Specific Requests**:
    - If the query asks for budget-friendly options, show only cheap/moderate choices.
    - If the query is general, provide options across different price ranges.

## **Category-Specific Responses**:
- **Restaurants**: Name, type of cuisine, price range (cheap, moderate, expensive), address (if available), opening hours (if available), and website (if available).
- **Hotels**: Name, location, price category (if available), and booking link (if available).
- **Activities & Tours**: Overview of the experience, location (if available), tour reviews (e.g., 2, 3.5, 4 stars) (if available), and booking link (if available).
- **Transportation & Car Rentals**: Overview, price category (if available), rental locations, and relevant links.
- **Itineraries**: Provide key highlights, duration, and locations covered.
- **General Information & News**: Summarize concisely while ensuring relevance to the query.

Now, using **only the provided database information**, answer the following query:

%s`

// Trigger pairs a lowercase substring with a fixed response instruction.
// Triggers match anywhere in the query, not only as the full message, and
// bypass retrieval entirely.
type Trigger struct {
	Substring string
	Response  string
}

// DefaultTriggers are evaluated in order before the retrieval path.
var DefaultTriggers = []Trigger{
	{
		Substring: "hello",
		Response: "Always respond with:\n" +
			"Hello! I'm your travel chatbot! Here's a fun joke: Why don’t skeletons fight each other? They don’t have the guts! 😄",
	},
	{
		Substring: "who are you",
		Response: "Always respond with:\n" +
			"I am a travel chatbot! I can help you find great places to visit, give you recommendations, and more!",
	},
	{
		Substring: "what is your name",
		Response: "Always respond with:\n" +
			"Hmm, I don’t have a name... I know, it's a bit sad! What’s your name? Maybe you could name me! 😊",
	},
}

// ChunkRetriever is implemented by *retriever.Retriever.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Prompt is the assembled payload for one completion.
type Prompt struct {
	System string
	User   string
	// Grounded is false for canned trigger responses, which skip retrieval.
	Grounded bool
}

type Builder struct {
	retriever ChunkRetriever
	triggers  []Trigger
}

func NewBuilder(retriever ChunkRetriever) *Builder {
	return &Builder{
		retriever: retriever,
		triggers:  DefaultTriggers,
	}
}

// NewBuilderWithTriggers overrides the trigger list; order is priority.
func NewBuilderWithTriggers(retriever ChunkRetriever, triggers []Trigger) *Builder {
	return &Builder{
		retriever: retriever,
		triggers:  triggers,
	}
}

// Build dispatches on query content: the first matching trigger wins,
// otherwise the retrieved chunks are joined by blank lines into the
// grounding template.
func (b *Builder) Build(ctx context.Context, query string) (Prompt, error) {
	lowered := strings.ToLower(query)
	for _, trigger := range b.triggers {
		if strings.Contains(lowered, trigger.Substring) {
			return Prompt{System: SystemPrompt, User: trigger.Response}, nil
		}
	}

	chunks, err := b.retriever.Retrieve(ctx, query)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	return Prompt{
		System:   SystemPrompt,
		User:     fmt.Sprintf(groundedTemplate, strings.Join(chunks, "\n\n"), query),
		Grounded: true,
	}, nil
}
