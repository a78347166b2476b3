// Package classifierengines contiene las implementaciones del clasificador de respuestas.
package classifierengines

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/craftable/ai/llm"
	"github.com/Abraxas-365/craftable/ai/providers/aiopenai"
	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/classifier"
)

// LLMClassifier clasifica la respuesta del usuario usando un modelo de lenguaje
type LLMClassifier struct {
	client *llm.Client
	model  string
}

func NewLLMClassifier(apiKey, model string) *LLMClassifier {
	provider := aiopenai.NewOpenAIProvider(apiKey)
	return &LLMClassifier{
		client: llm.NewClient(provider),
		model:  model,
	}
}

// Classify evalúa la última respuesta del usuario contra el prompt del paso.
// El resultado se normaliza: primera línea, sin espacios, en minúsculas.
func (lc *LLMClassifier) Classify(ctx context.Context, prompt string, convContext string, latestInput string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", classifier.ErrEmptyPrompt()
	}

	systemPrompt := prompt
	if convContext != "" {
		systemPrompt = fmt.Sprintf("%s\n\nConversation data so far:\n%s", prompt, convContext)
	}

	response, err := lc.client.Chat(
		ctx,
		[]llm.Message{
			llm.NewSystemMessage(systemPrompt),
			llm.NewUserMessage(latestInput),
		},
		llm.WithModel(lc.model),
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(20),
	)
	if err != nil {
		logx.Error("❌ LLM classification failed: %v", err)
		return "", errx.Wrap(err, "llm classification failed", errx.TypeExternal)
	}

	outcome := normalizeOutcome(response.Message.Content)
	logx.Info("🧠 Classified input as '%s'", outcome)
	return outcome, nil
}

// normalizeOutcome reduce la salida del modelo a una etiqueta comparable
func normalizeOutcome(raw string) string {
	line := raw
	if idx := strings.IndexAny(raw, "\r\n"); idx >= 0 {
		line = raw[:idx]
	}
	line = strings.Trim(line, " \t.\"'`")
	return strings.ToLower(line)
}
