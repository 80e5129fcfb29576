package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/pkg/jobs"
	"github.com/noah-isme/lms-admin-api/pkg/mailer"
)

const jobTypeMail = "mail"

type mailMessage struct {
	To      string
	Subject string
	Body    string
}

// NotificationService delivers account mail through the background queue.
type NotificationService struct {
	mailer  mailer.Mailer
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(m mailer.Mailer, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: m, metrics: metrics, logger: logger}
}

// Attach sets the queue messages are dispatched through.
func (n *NotificationService) Attach(queue jobEnqueuer) {
	n.queue = queue
}

// SendOTP schedules the password recovery code for delivery.
func (n *NotificationService) SendOTP(email, code string, ttl time.Duration) {
	msg := mailMessage{
		To:      email,
		Subject: "Your password reset code",
		Body: fmt.Sprintf("Your one-time password reset code is %s.\r\n\r\nIt expires in %d minutes. If you did not request a reset you can ignore this message.\r\n",
			code, int(ttl.Minutes())),
	}
	job := jobs.Job{ID: uuid.NewString(), Type: jobTypeMail, Payload: msg}
	if n.queue == nil {
		if err := n.Handle(context.Background(), job); err != nil {
			n.logger.Warn("failed to send otp mail", zap.Error(err))
		}
		return
	}
	if err := n.queue.TryEnqueue(job); err != nil {
		n.metrics.RecordMail(OutcomeDropped)
		n.logger.Warn("otp mail dropped", zap.Error(err))
	}
}

// Handle is the queue handler that delivers one message.
func (n *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailMessage)
	if !ok {
		return fmt.Errorf("unsupported mail payload %T", job.Payload)
	}
	if err := n.mailer.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		n.metrics.RecordMail(OutcomeFailed)
		return err
	}
	n.metrics.RecordMail(OutcomeSuccess)
	return nil
}
