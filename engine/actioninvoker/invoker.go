// Package actioninvoker realiza las llamadas externas declaradas por un
// ActionDescriptor: peticiones HTTP al PMS u otros servicios, y envíos de
// notificación por el transporte del canal.
package actioninvoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/engine"
)

type Invoker struct {
	httpClient *http.Client
	transport  engine.Transport
	resolver   *engine.TemplateResolver
}

var _ engine.ActionInvoker = (*Invoker)(nil)

func NewInvoker(transport engine.Transport) *Invoker {
	return &Invoker{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		transport: transport,
		resolver:  engine.NewTemplateResolver(),
	}
}

// Invoke despacha por kind. Los valores de parameters pueden llevar
// plantillas {{ruta}}; se resuelven contra resolvedContext antes de ejecutar.
func (i *Invoker) Invoke(ctx context.Context, descriptor engine.ActionDescriptor, resolvedContext map[string]any) (*engine.ActionResult, error) {
	params := i.resolver.ResolveMap(descriptor.Parameters, resolvedContext)

	switch descriptor.Kind {
	case engine.ActionKindHTTP:
		return i.invokeHTTP(ctx, params)
	case engine.ActionKindNotify:
		return i.invokeNotify(ctx, params)
	default:
		return nil, ErrUnknownKind().WithDetail("kind", string(descriptor.Kind))
	}
}

// ============================================================================
// HTTP Actions
// ============================================================================

type httpParams struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       map[string]any    `json:"body,omitempty"`
	Timeout    int               `json:"timeout,omitempty"` // seconds
	MaxRetries int               `json:"max_retries,omitempty"`
}

func (p httpParams) method() string {
	if p.Method == "" {
		return http.MethodGet
	}
	return p.Method
}

func (i *Invoker) invokeHTTP(ctx context.Context, params map[string]any) (*engine.ActionResult, error) {
	var config httpParams
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	if config.URL == "" {
		return nil, ErrInvalidParameters().WithDetail("reason", "http action requires url")
	}

	var bodyJSON []byte
	if len(config.Body) > 0 {
		data, err := json.Marshal(config.Body)
		if err != nil {
			return nil, ErrInvalidParameters().WithDetail("reason", "body not serializable").WithCause(err)
		}
		bodyJSON = data
	}

	reqCtx := ctx
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, time.Duration(config.Timeout)*time.Second)
		defer cancel()
	}

	logx.Info("🌐 Action HTTP: %s %s", config.method(), config.URL)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			logx.Info("   🔄 Retry %d/%d for %s", attempt, config.MaxRetries, config.URL)
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		// el body se reconstruye por intento
		var bodyReader io.Reader
		if bodyJSON != nil {
			bodyReader = bytes.NewReader(bodyJSON)
		}

		req, err := http.NewRequestWithContext(reqCtx, config.method(), config.URL, bodyReader)
		if err != nil {
			return nil, ErrRequestFailed().WithDetail("url", config.URL).WithCause(err)
		}
		for key, value := range config.Headers {
			req.Header.Set(key, value)
		}
		if bodyReader != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, lastErr = i.httpClient.Do(req)
		if lastErr == nil {
			break
		}
	}

	if lastErr != nil {
		return nil, ErrRequestFailed().WithDetail("url", config.URL).WithCause(lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrRequestFailed().WithDetail("url", config.URL).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrBadStatus().
			WithDetail("url", config.URL).
			WithDetail("status", fmt.Sprintf("%d", resp.StatusCode))
	}

	result := &engine.ActionResult{
		Outputs: map[string]any{
			"status_code": resp.StatusCode,
		},
	}

	// respuesta JSON: cada campo del objeto es un output; "message" además
	// reemplaza el texto saliente del paso
	var parsed map[string]any
	if len(respBody) > 0 && json.Unmarshal(respBody, &parsed) == nil {
		for key, value := range parsed {
			result.Outputs[key] = value
		}
		if msg, ok := parsed["message"].(string); ok {
			result.Message = msg
		}
	} else if len(respBody) > 0 {
		result.Outputs["body"] = string(respBody)
	}

	return result, nil
}

// ============================================================================
// Notify Actions
// ============================================================================

type notifyParams struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

func (i *Invoker) invokeNotify(ctx context.Context, params map[string]any) (*engine.ActionResult, error) {
	var config notifyParams
	if err := decodeParams(params, &config); err != nil {
		return nil, err
	}
	if config.Recipient == "" || config.Message == "" {
		return nil, ErrInvalidParameters().WithDetail("reason", "notify action requires recipient and message")
	}

	if err := i.transport.Send(ctx, config.Recipient, config.Message); err != nil {
		return nil, ErrSendFailed().WithDetail("recipient", config.Recipient).WithCause(err)
	}

	return &engine.ActionResult{
		Outputs: map[string]any{
			"sent":      true,
			"recipient": config.Recipient,
		},
	}, nil
}

// decodeParams round-trips the resolved parameter map into a typed struct
func decodeParams(params map[string]any, target any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return ErrInvalidParameters().WithCause(err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return ErrInvalidParameters().WithCause(err)
	}
	return nil
}
