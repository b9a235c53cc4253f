package schemas

import "github.com/yungbote/flashdeck-backend/internal/platform/openai"

// Deck generation favors consistency; example generation favors variety.
func DeckSampling() openai.SamplingParams {
	return openai.SamplingParams{Temperature: 0.2}
}

func ExampleSampling() openai.SamplingParams {
	return openai.SamplingParams{Temperature: 0.7}
}
