package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/loopers/commerce-api/pkg/helpers"
	"github.com/loopers/commerce-api/pkg/mailer"
	mailtpl "github.com/loopers/commerce-api/pkg/mailer/templates"
)

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "ack"
	case drop:
		return "drop"
	default:
		return "requeue"
	}
}

// processor turns one queued EmailJob into a sent message.
type processor struct {
	sender      mailer.Sender
	resolver    mailtpl.GeoResolver
	logger      *logrus.Logger
	sendTimeout time.Duration
}

// handle decides what happens to a delivery. Malformed jobs are dropped;
// a failed send is retried once through the broker.
func (p *processor) handle(ctx context.Context, body []byte, redelivered bool) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(p.logger, "bad email message", oops.Code("EMAIL_DECODE_FAILED").Wrap(err), nil)
		return drop
	}
	if strings.TrimSpace(job.To) == "" {
		p.logger.Warn("email job without recipient")
		return drop
	}

	helpers.NormalizeTemplate(&job)
	helpers.EnsureRecipientAndEmail(&job)
	helpers.LocalizeTimesIfPossible(ctx, p.resolver, job.Data)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Exists(job.Template) {
			p.logger.WithField("template", job.Template).Warn("unknown email template")
			return drop
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			helpers.LogError(p.logger, "render email failed", err, logrus.Fields{"template": job.Template})
			return drop
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		p.logger.WithField("to", job.To).Warn("email job has nothing to send")
		return drop
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()
	if err := p.sender.Send(sendCtx, job.To, subject, text, html); err != nil {
		helpers.LogError(p.logger, "send email failed", err, logrus.Fields{"template": job.Template, "redelivered": redelivered})
		if redelivered {
			return drop
		}
		return requeue
	}
	helpers.LogInfo(p.logger, "email sent", logrus.Fields{"template": job.Template})
	return ack
}
