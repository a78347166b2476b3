// Package whatsapp implementa el adaptador del WhatsApp Business API (Meta Graph).
package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pelangilabs/moltbot/channels"
	"github.com/pelangilabs/moltbot/pkg/config"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

const (
	whatsappAPIBaseURL = "https://graph.facebook.com"
	defaultAPIVersion  = "v21.0"
)

// Adapter implementa ChannelAdapter para WhatsApp Business API
type Adapter struct {
	config     config.WhatsAppConfig
	httpClient *http.Client
	apiURL     string
}

func NewAdapter(cfg config.WhatsAppConfig) *Adapter {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Adapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     fmt.Sprintf("%s/%s/%s", whatsappAPIBaseURL, apiVersion, cfg.PhoneNumberID),
	}
}

// GetType devuelve el tipo de canal
func (a *Adapter) GetType() channels.ChannelType {
	return channels.ChannelTypeWhatsApp
}

// SendMessage envía un mensaje de texto vía WhatsApp
func (a *Adapter) SendMessage(ctx context.Context, msg channels.OutgoingMessage) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                msg.RecipientID,
		"type":              "text",
		"text": map[string]any{
			"body": msg.Content.Text,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return channels.ErrSendFailed().WithCause(err)
	}

	url := fmt.Sprintf("%s/messages", a.apiURL)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return channels.ErrSendFailed().WithCause(err)
	}

	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return channels.ErrProviderAPIError().WithCause(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("❌ WhatsApp API Error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return channels.ErrProviderAPIError().
			WithDetail("status", resp.StatusCode).
			WithDetail("response", string(body))
	}

	log.Printf("✅ WhatsApp message sent to %s", msg.RecipientID)
	return nil
}

// VerifySignature verifica la firma X-Hub-Signature-256 del webhook
func (a *Adapter) VerifySignature(payload []byte, signatureHeader string) error {
	if a.config.AppSecret == "" {
		return nil // Skip verification if no secret configured
	}

	if signatureHeader == "" {
		return channels.ErrInvalidWebhookSignature()
	}

	signature := strings.TrimPrefix(signatureHeader, "sha256=")

	mac := hmac.New(sha256.New, []byte(a.config.AppSecret))
	mac.Write(payload)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return channels.ErrInvalidWebhookSignature()
	}

	return nil
}

// ParseWebhook extrae los mensajes entrantes de un payload del webhook de Meta
func (a *Adapter) ParseWebhook(payload []byte) ([]channels.IncomingMessage, error) {
	var webhook Webhook
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return nil, channels.ErrProviderAPIError().WithCause(err).WithDetail("reason", "unparseable webhook")
	}

	var messages []channels.IncomingMessage

	for _, entry := range webhook.Entry {
		for _, change := range entry.Changes {
			if change.Value.MessagingProduct != "whatsapp" {
				continue
			}

			names := contactNames(change.Value.Contacts)

			for _, msg := range change.Value.Messages {
				text := extractText(msg)
				if text == "" {
					continue // status updates, unsupported media
				}

				messages = append(messages, channels.IncomingMessage{
					MessageID:  kernel.NewMessageID(string(msg.ID)),
					Channel:    channels.ChannelTypeWhatsApp,
					SenderID:   msg.From,
					SenderName: names[msg.From],
					Content:    channels.NewTextContent(text),
					Timestamp:  msg.Timestamp,
				})
			}
		}
	}

	return messages, nil
}

func contactNames(contacts []WebhookContact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, contact := range contacts {
		names[contact.WaID] = contact.Profile.Name
	}
	return names
}

func extractText(msg WebhookMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}
	if msg.Image != nil && msg.Image.Caption != "" {
		return msg.Image.Caption
	}
	return ""
}

// ============================================
// Webhook structures (Meta Graph API)
// ============================================

type Webhook struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         WebhookMetadata  `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts"`
	Messages         []WebhookMessage `json:"messages"`
	Statuses         []WebhookStatus  `json:"statuses"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type WebhookMessage struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	Timestamp int64         `json:"timestamp,string"`
	Type      string        `json:"type"`
	Text      *WebhookText  `json:"text,omitempty"`
	Image     *WebhookMedia `json:"image,omitempty"`
	Document  *WebhookMedia `json:"document,omitempty"`
	Audio     *WebhookMedia `json:"audio,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption,omitempty"`
}

type WebhookStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   int64  `json:"timestamp,string"`
	RecipientID string `json:"recipient_id"`
}
