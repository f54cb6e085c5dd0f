package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/tools"
)

// scriptedLLM replays canned responses in order.
type scriptedLLM struct {
	responses []string
	calls     [][]interfaces.Message
}

func (s *scriptedLLM) Chat(_ context.Context, messages []interfaces.Message) (string, error) {
	s.calls = append(s.calls, messages)
	if len(s.calls) > len(s.responses) {
		return "I have run out of script.", nil
	}
	return s.responses[len(s.calls)-1], nil
}

func (s *scriptedLLM) HealthCheck(context.Context) error { return nil }
func (s *scriptedLLM) Close() error                      { return nil }

type scriptedResolver struct {
	calls  int
	result *models.ToolResult
}

func (s *scriptedResolver) Resolve(context.Context, models.PlaceQuery) *models.ToolResult {
	s.calls++
	return s.result
}

type noopRecommender struct{}

func (noopRecommender) Recommend(context.Context, models.RecommendQuery) *models.ToolResult {
	return models.FailureResult("not in this test")
}

func newLoop(llm interfaces.LLMService, resolver interfaces.PlaceResolver) *AgentLoop {
	logger := common.GetLogger()
	svc := tools.NewMapService(resolver, noopRecommender{}, nil, nil, logger)
	router := tools.NewToolRouter(svc, logger)
	return NewAgentLoop(router, llm, logger, nil)
}

func successPlace() *models.ToolResult {
	collection := models.NewFeatureCollection()
	collection.Append(models.NewFeature(models.NewPoint(2.35, 48.85), map[string]any{
		"source":       models.SourceNominatim,
		"display_name": "Paris, France",
	}))
	return models.SuccessResult(models.SourceNominatim, collection)
}

const findPlaceCall = "Let me look that up.\n```json\n{\"tool_use\": {\"id\": \"call_1\", \"name\": \"find_place\", \"arguments\": {\"query\": \"Paris\"}}}\n```"

func TestExecute_ToolCallThenFinalAnswer(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		findPlaceCall,
		"Paris is now shown on the map.",
	}}
	resolver := &scriptedResolver{result: successPlace()}
	loop := newLoop(llm, resolver)

	answer, toolCalls, err := loop.Execute(context.Background(), "Where is Paris?", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Paris is now shown on the map.", answer)
	assert.Equal(t, 1, toolCalls)
	assert.Equal(t, 1, resolver.calls)

	// the second LLM call must see the tool result as conversation context
	require.Len(t, llm.calls, 2)
	last := llm.calls[1][len(llm.calls[1])-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "Tool 'find_place' returned")
	assert.Contains(t, last.Content, "Paris, France")
}

func TestExecute_PlainAnswerSkipsTools(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"Hello! Ask me about places."}}
	resolver := &scriptedResolver{result: successPlace()}
	loop := newLoop(llm, resolver)

	answer, toolCalls, err := loop.Execute(context.Background(), "Hi", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello! Ask me about places.", answer)
	assert.Zero(t, toolCalls)
	assert.Zero(t, resolver.calls)
}

func TestExecute_ToolFailureIsRelayedNotFatal(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		findPlaceCall,
		"I could not find that place, try a different spelling.",
	}}
	resolver := &scriptedResolver{result: models.FailureResult("geocoding lookup failed")}
	loop := newLoop(llm, resolver)

	answer, toolCalls, err := loop.Execute(context.Background(), "Where is Xyzzy?", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, toolCalls)
	assert.Contains(t, answer, "could not find")

	last := llm.calls[1][len(llm.calls[1])-1]
	assert.Contains(t, last.Content, "Tool 'find_place' error")
}

func TestExecute_StreamsThoughtActionObservation(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		findPlaceCall,
		"Done.",
	}}
	loop := newLoop(llm, &scriptedResolver{result: successPlace()})

	var kinds []string
	_, _, err := loop.Execute(context.Background(), "Where is Paris?", nil, func(msg *tools.StreamingMessage) error {
		kinds = append(kinds, msg.Type)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"thought", "action", "observation", "final_answer"}, kinds)
}

func TestExecute_SystemPromptListsTools(t *testing.T) {
	llm := &scriptedLLM{responses: []string{"Hi."}}
	loop := newLoop(llm, &scriptedResolver{result: successPlace()})

	_, _, err := loop.Execute(context.Background(), "Hi", nil, nil)
	require.NoError(t, err)

	system := llm.calls[0][0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "map assistant")
	assert.Contains(t, system.Content, "## find_place")
}

func TestExecute_HonorsMaxTurns(t *testing.T) {
	// the model keeps calling tools and never answers
	responses := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		responses = append(responses, findPlaceCall)
	}
	llm := &scriptedLLM{responses: responses}

	logger := common.GetLogger()
	svc := tools.NewMapService(&scriptedResolver{result: successPlace()}, noopRecommender{}, nil, nil, logger)
	router := tools.NewToolRouter(svc, logger)
	loop := NewAgentLoop(router, llm, logger, &AgentConfig{MaxTurns: 3, MaxToolCalls: 10, Timeout: DefaultAgentConfig().Timeout})

	_, _, err := loop.Execute(context.Background(), "Loop forever", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not complete within 3 turns")
}
