package classifierengines

import (
	"context"
	"strings"
)

// KeywordClassifier clasifica buscando etiquetas candidatas dentro del texto.
// Sirve como clasificador de respaldo cuando no hay modelo configurado y para
// el canal de pruebas.
type KeywordClassifier struct {
	candidates []string
}

func NewKeywordClassifier(candidates []string) *KeywordClassifier {
	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			normalized = append(normalized, c)
		}
	}
	return &KeywordClassifier{candidates: normalized}
}

// Classify devuelve la primera etiqueta candidata contenida en la entrada
func (kc *KeywordClassifier) Classify(ctx context.Context, prompt string, convContext string, latestInput string) (string, error) {
	input := strings.ToLower(latestInput)
	for _, candidate := range kc.candidates {
		if strings.Contains(input, candidate) {
			return candidate, nil
		}
	}
	return "", nil
}
