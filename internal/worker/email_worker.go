package worker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/pkg/mailer"
	mailtpl "github.com/oksasatya/vidstream-accounts/pkg/mailer/templates"
)

// Sender delivers one rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// Outcome tells the consumer loop how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Retry
)

// EmailWorker renders account email jobs and sends them.
type EmailWorker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewEmailWorker(s Sender, logger *logrus.Logger) *EmailWorker {
	return &EmailWorker{Sender: s, Logger: logger, SendTimeout: 15 * time.Second}
}

// Process handles one message body. Malformed or unrenderable jobs are
// dropped; send failures are retried.
func (w *EmailWorker) Process(ctx context.Context, msgType string, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Drop
	}
	if job.To == "" {
		w.Logger.WithField("type", msgType).Warn("email job without recipient")
		return Drop
	}
	if job.Template == "" {
		job.Template = msgType
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" && subject == "" {
		s, t, h, err := mailtpl.Render(mailtpl.FromMap(job.Template, job.Data))
		if err != nil {
			w.Logger.WithError(err).WithField("template", job.Template).Warn("render email failed")
			return Drop
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	id, err := w.Sender.Send(c, job.To, subject, text, html)
	if err != nil {
		w.Logger.WithError(err).WithField("template", job.Template).Error("send email failed")
		return Retry
	}
	w.Logger.WithFields(logrus.Fields{"template": job.Template, "message_id": id}).Info("email sent")
	return Ack
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *EmailWorker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch w.Process(ctx, msg.Type, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Drop:
				_ = msg.Nack(false, false)
			case Retry:
				_ = msg.Nack(false, !msg.Redelivered)
			}
		}
	}
}
