package channelmanager

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/craftable/logx"

	"github.com/pelangilabs/moltbot/channels"
)

// StaffAlerter notifica fallos operativos al personal por mensajería.
// Implementa el puerto Alerter del motor.
type StaffAlerter struct {
	manager     *Manager
	channelType channels.ChannelType
	recipients  []string
}

func NewStaffAlerter(manager *Manager, channelType channels.ChannelType, recipients []string) *StaffAlerter {
	return &StaffAlerter{
		manager:     manager,
		channelType: channelType,
		recipients:  recipients,
	}
}

// Alert envía el aviso a cada destinatario. Los fallos de entrega solo se
// registran: una alerta nunca tumba el flujo que la originó.
func (a *StaffAlerter) Alert(ctx context.Context, subject string, detail string) {
	text := fmt.Sprintf("🚨 MOLTBOT ALERT\n%s\n%s", subject, detail)

	for _, recipient := range a.recipients {
		msg := channels.OutgoingMessage{
			RecipientID: recipient,
			Content:     channels.NewTextContent(text),
		}
		if err := a.manager.Send(ctx, a.channelType, msg); err != nil {
			logx.Error("❌ Staff alert delivery to %s failed: %v", recipient, err)
		}
	}
}
