package actioninvoker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/engine"
)

type stubTransport struct {
	sent      []string
	failSends bool
}

func (s *stubTransport) Send(ctx context.Context, recipient, content string) error {
	if s.failSends {
		return assert.AnError
	}
	s.sent = append(s.sent, recipient+": "+content)
	return nil
}

func TestInvoker_Invoke_HTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "C12", body["capsule"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message":    "Capsule C12 confirmed",
			"booking_id": "BK-9",
		})
	}))
	defer server.Close()

	invoker := NewInvoker(&stubTransport{})
	result, err := invoker.Invoke(context.Background(), engine.ActionDescriptor{
		Kind: engine.ActionKindHTTP,
		Parameters: map[string]any{
			"method": "POST",
			"url":    server.URL,
			"body":   map[string]any{"capsule": "{{capsule}}"},
		},
	}, map[string]any{"capsule": "C12"})

	require.NoError(t, err)
	assert.Equal(t, "Capsule C12 confirmed", result.Message)
	assert.Equal(t, "BK-9", result.Outputs["booking_id"])
}

func TestInvoker_Invoke_HTTPBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	invoker := NewInvoker(&stubTransport{})
	_, err := invoker.Invoke(context.Background(), engine.ActionDescriptor{
		Kind:       engine.ActionKindHTTP,
		Parameters: map[string]any{"url": server.URL},
	}, map[string]any{})

	assert.Error(t, err)
}

func TestInvoker_Invoke_Notify(t *testing.T) {
	transport := &stubTransport{}
	invoker := NewInvoker(transport)

	result, err := invoker.Invoke(context.Background(), engine.ActionDescriptor{
		Kind: engine.ActionKindNotify,
		Parameters: map[string]any{
			"recipient": "{{staff_phone}}",
			"message":   "Guest {{name}} needs help",
		},
	}, map[string]any{"staff_phone": "+60111", "name": "Aiman"})

	require.NoError(t, err)
	assert.Equal(t, true, result.Outputs["sent"])
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "+60111: Guest Aiman needs help", transport.sent[0])
}

func TestInvoker_Invoke_UnknownKind(t *testing.T) {
	invoker := NewInvoker(&stubTransport{})

	_, err := invoker.Invoke(context.Background(), engine.ActionDescriptor{
		Kind: engine.ActionKind("carrier_pigeon"),
	}, map[string]any{})

	assert.Error(t, err)
}
