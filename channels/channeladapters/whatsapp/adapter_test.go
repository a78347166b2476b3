package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/pkg/config"
)

func testAdapter(appSecret string) *Adapter {
	return NewAdapter(config.WhatsAppConfig{
		PhoneNumberID:      "1234567890",
		AccessToken:        "token",
		AppSecret:          appSecret,
		WebhookVerifyToken: "verify-me",
	})
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestAdapter_VerifySignature_Valid(t *testing.T) {
	adapter := testAdapter("topsecret")
	payload := []byte(`{"object":"whatsapp_business_account"}`)

	err := adapter.VerifySignature(payload, sign("topsecret", payload))
	assert.NoError(t, err)
}

func TestAdapter_VerifySignature_Tampered(t *testing.T) {
	adapter := testAdapter("topsecret")
	payload := []byte(`{"object":"whatsapp_business_account"}`)
	signature := sign("topsecret", payload)

	err := adapter.VerifySignature([]byte(`{"object":"tampered"}`), signature)
	assert.Error(t, err)
}

func TestAdapter_VerifySignature_MissingHeader(t *testing.T) {
	adapter := testAdapter("topsecret")

	err := adapter.VerifySignature([]byte(`{}`), "")
	assert.Error(t, err)
}

func TestAdapter_VerifySignature_SkippedWithoutSecret(t *testing.T) {
	adapter := testAdapter("")

	err := adapter.VerifySignature([]byte(`{}`), "")
	assert.NoError(t, err)
}

func TestAdapter_ParseWebhook_TextMessage(t *testing.T) {
	adapter := testAdapter("")

	payload := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "60123456789", "phone_number_id": "1234567890"},
					"contacts": [{"wa_id": "60111222333", "profile": {"name": "Aiman"}}],
					"messages": [{
						"id": "wamid.ABC123",
						"from": "60111222333",
						"timestamp": "1735689600",
						"type": "text",
						"text": {"body": "Hello, I want to check in"}
					}]
				}
			}]
		}]
	}`)

	messages, err := adapter.ParseWebhook(payload)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, "wamid.ABC123", string(msg.MessageID))
	assert.Equal(t, "60111222333", msg.SenderID)
	assert.Equal(t, "Aiman", msg.SenderName)
	assert.Equal(t, "Hello, I want to check in", msg.Content.Text)
	assert.Equal(t, int64(1735689600), msg.Timestamp)
}

func TestAdapter_ParseWebhook_StatusUpdateIgnored(t *testing.T) {
	adapter := testAdapter("")

	payload := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "entry-1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"statuses": [{"id": "wamid.X", "status": "delivered", "timestamp": "1735689600", "recipient_id": "60111222333"}]
				}
			}]
		}]
	}`)

	messages, err := adapter.ParseWebhook(payload)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAdapter_ParseWebhook_Malformed(t *testing.T) {
	adapter := testAdapter("")

	_, err := adapter.ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}
