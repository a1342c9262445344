package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/validation"
	"golang.org/x/time/rate"
)

// Recipient delivery states recorded on a NotificationLog.
const (
	RecipientSent   = "sent"
	RecipientFailed = "failed"
)

// SendRequest is the body of a broadcast: who receives the rendered template.
type SendRequest struct {
	Recipients []model.Recipient `json:"recipients" validate:"min=1,dive"`
}

// NotificationService manages templates and broadcasts them to recipients.
type NotificationService struct {
	*CRUDService[model.NotificationTemplate, *model.NotificationTemplate]
	Logs *CRUDService[model.NotificationLog, *model.NotificationLog]

	sender  Sender
	limiter *rate.Limiter
}

// NewNotificationService creates a new notification service. perSecond paces dispatch so a
// large recipient list does not flood the transport.
func NewNotificationService(
	templates database.Repository[model.NotificationTemplate],
	logs database.Repository[model.NotificationLog],
	sender Sender,
	perSecond float64,
) *NotificationService {
	if sender == nil {
		sender = LogSender{}
	}
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return &NotificationService{
		CRUDService: NewCRUDService[model.NotificationTemplate, *model.NotificationTemplate](templates, Resource[model.NotificationTemplate]{
			Name: "Notification template",
			Extras: func(records []model.NotificationTemplate) Stats {
				return Stats{"by_channel": CountBy(records, func(t *model.NotificationTemplate) string { return string(t.Channel) })}
			},
		}),
		Logs: NewCRUDService[model.NotificationLog, *model.NotificationLog](logs, Resource[model.NotificationLog]{
			Name: "Notification log",
		}),
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// ParseSendRequest decodes and validates a broadcast body. Blank recipient rows are dropped
// first, so row errors are keyed by the position of the remaining rows.
func ParseSendRequest(payload []byte) (*SendRequest, error) {
	var req SendRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, decodeError(err)
	}

	recipients := make([]model.Recipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
		if r.Name == "" && r.Email == "" {
			continue
		}
		recipients = append(recipients, r)
	}
	req.Recipients = recipients

	if fields := validation.NewValidator().Check(&req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return &req, nil
}

// Send renders template id for every recipient, dispatches it and records a NotificationLog.
// Per-recipient failures are recorded, not returned. If pacing is interrupted the remaining
// recipients are recorded as failed and the log is still written.
func (s *NotificationService) Send(ctx context.Context, id string, req *SendRequest) (*model.NotificationLog, error) {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, NewValidationError("template", "template is inactive")
	}

	entry := &model.NotificationLog{
		TemplateID: tmpl.ID,
		Channel:    tmpl.Channel,
		Subject:    tmpl.Subject,
	}
	entry.ApplyDefaults()

	var waitErr error
	for i, r := range req.Recipients {
		if waitErr = s.limiter.Wait(ctx); waitErr != nil {
			for _, rest := range req.Recipients[i:] {
				rest.Status = RecipientFailed
				rest.Error = "not sent: " + waitErr.Error()
				entry.FailedCount++
				entry.Recipients = append(entry.Recipients, rest)
			}
			break
		}

		subject, body := tmpl.Render(r)
		err := s.sender.Send(ctx, Message{
			Channel: string(tmpl.Channel),
			To:      r.Email,
			Name:    r.Name,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			log.Warn("notification failed", "template", tmpl.ID, "to", r.Email, "err", err)
			r.Status = RecipientFailed
			r.Error = err.Error()
			entry.FailedCount++
		} else {
			r.Status = RecipientSent
			entry.SentCount++
		}
		entry.Recipients = append(entry.Recipients, r)
	}

	log.Info("notification broadcast finished",
		"template", tmpl.ID,
		"sent", entry.SentCount,
		"failed", entry.FailedCount,
	)
	if waitErr != nil {
		// The log is written even when the caller went away mid-broadcast.
		if _, err := s.Logs.Insert(context.WithoutCancel(ctx), entry); err != nil {
			return nil, err
		}
		return entry, waitErr
	}
	return s.Logs.Insert(ctx, entry)
}
