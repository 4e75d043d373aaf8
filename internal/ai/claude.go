package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Claude represents a client for the Anthropic messages API, used to
// generate supplemental wine trivia questions targeted at a user's weak
// areas.
type Claude struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	cache       *QuestionCache
}

// New creates a new Claude client
func New() (*Claude, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	return &Claude{
		apiKey:      apiKey,
		apiURL:      "https://api.anthropic.com/v1/messages",
		model:       "claude-3-5-haiku-20241022",
		maxTokens:   1000,
		temperature: 0.8,
		cache:       NewQuestionCache(time.Hour),
	}, nil
}

// GeneratedQuestion is a question produced by the model.
type GeneratedQuestion struct {
	Question           string   `json:"question"`
	Answer             string   `json:"answer"`
	AlternativeAnswers []string `json:"alternativeAnswers"`
	Explanation        string   `json:"explanation"`
	Category           string   `json:"category"`
	Difficulty         string   `json:"difficulty"`
}

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateQuestion asks the model for a question in the given category and
// difficulty, steering it toward the user's weak concepts. Results are
// cached for an hour per (category, difficulty, weaknesses) combination.
func (c *Claude) GenerateQuestion(category, difficulty string, weaknesses []string) (*GeneratedQuestion, error) {
	key := cacheKey(category, difficulty, weaknesses)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	prompt := buildPrompt(category, difficulty, weaknesses)

	request := messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    []Message{{Role: "user", Content: prompt}},
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	question, err := parseQuestion(response.Content[0].Text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, question)
	return question, nil
}

func buildPrompt(category, difficulty string, weaknesses []string) string {
	weaknessContext := ""
	if len(weaknesses) > 0 {
		weaknessContext = fmt.Sprintf("The user has shown weakness in these areas: %s. ", strings.Join(weaknesses, ", "))
	}

	return fmt.Sprintf(`Generate a wine education question for the category %q at %q difficulty level.
%s
Please provide:
1. A clear, educational question about wine
2. The correct answer (concise but complete)
3. Three alternative answer variations that would also be considered correct
4. A brief explanation (2-3 sentences) of why this is important to know

Format your response as JSON:
{
  "question": "your question here",
  "answer": "main correct answer",
  "alternativeAnswers": ["variation 1", "variation 2", "variation 3"],
  "explanation": "brief explanation",
  "category": %q,
  "difficulty": %q
}`, category, difficulty, weaknessContext, category, difficulty)
}

// parseQuestion extracts the JSON object from the model response, tolerating
// prose around it.
func parseQuestion(text string) (*GeneratedQuestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var question GeneratedQuestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &question); err != nil {
		return nil, fmt.Errorf("failed to parse generated question: %w", err)
	}
	if question.Question == "" || question.Answer == "" {
		return nil, fmt.Errorf("generated question is missing required fields")
	}
	return &question, nil
}

func cacheKey(category, difficulty string, weaknesses []string) string {
	return category + "-" + difficulty + "-" + strings.Join(weaknesses, ",")
}
