package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/mail"
)

// NotificationService turns domain events into transactional mails. A
// delivery failure is logged and dropped; notification never blocks or fails
// the operation that triggered it.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketReplied, n.handleTicketReplied)
	n.dispatcher.Subscribe(events.EventVerificationRequested, n.credentialHandler(mail.KindVerification))
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.credentialHandler(mail.KindPasswordReset))
	n.dispatcher.Subscribe(events.EventEmailChangeRequested, n.credentialHandler(mail.KindEmailChange))
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	n.send(mail.KindTicketCreated, payload.Email, mail.TemplateData{
		TicketID: payload.TicketID,
		Title:    payload.Title,
		Category: payload.Category,
		Priority: string(payload.Priority),
		Status:   string(payload.Status),
	})
	return nil
}

func (n *NotificationService) handleTicketReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	if !ok {
		n.logger.Warn("unexpected payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	n.send(mail.KindTicketReply, payload.Email, mail.TemplateData{
		TicketID: payload.TicketID,
		Reply:    payload.Reply,
	})
	return nil
}

func (n *NotificationService) credentialHandler(kind mail.Kind) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.CredentialRequestedPayload)
		if !ok {
			n.logger.Warn("unexpected payload", zap.String("event_type", string(event.Type)))
			return nil
		}
		n.send(kind, payload.Email, mail.TemplateData{
			UserName:   payload.UserName,
			Link:       payload.Link,
			TTLMinutes: payload.TTLMinutes,
		})
		return nil
	}
}

func (n *NotificationService) send(kind mail.Kind, to string, data mail.TemplateData) {
	subject, body, err := mail.Render(kind, data)
	if err != nil {
		n.logger.Error("rendering mail failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		n.logger.Error("sending mail failed",
			zap.String("kind", string(kind)),
			zap.String("to", to),
			zap.Error(err))
		return
	}
	n.logger.Info("mail sent", zap.String("kind", string(kind)), zap.String("to", to))
}
