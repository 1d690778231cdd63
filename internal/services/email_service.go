package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/mail.v2"

	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
)

// EmailService sends survey invite emails over SMTP.
type EmailService struct {
	cfg    *config.Config
	logger *observability.Logger
	dialer *mail.Dialer
}

// EmailServiceInterface is an alias for the shared interface
type EmailServiceInterface = serviceinterfaces.EmailService

// NewEmailService creates a new email service. When SMTP is not configured
// the service stays disabled and sends are skipped, not errors at startup.
func NewEmailService(cfg *config.Config, logger *observability.Logger) *EmailService {
	var dialer *mail.Dialer
	if cfg.Email.Enabled && cfg.Email.SMTP.Host != "" {
		dialer = mail.NewDialer(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
		)
		// DialAndSend blocks the intake request while the invite goes out,
		// so a hung SMTP server must not hold it open indefinitely.
		dialer.Timeout = config.MailSendTimeout
	}
	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

// IsEnabled returns whether email functionality is enabled
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Email.Enabled && e.cfg.Email.SMTP.Host != ""
}

// SendSurveyInvite sends the survey invite to a customer, embedding the
// survey link below the generated invite body.
func (e *EmailService) SendSurveyInvite(ctx context.Context, to, customerName, inviteBody, surveyURL string) (err error) {
	ctx, span := otel.Tracer("email-service").Start(ctx, "SendSurveyInvite",
		trace.WithAttributes(
			attribute.String("email.to", to),
		),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping survey invite", map[string]interface{}{
			"to": to,
		})
		return contextutils.ErrMailNotConfigured
	}
	if e.dialer == nil {
		return contextutils.ErrorWithContextf("email service not properly configured")
	}

	subject := fmt.Sprintf("We'd love your feedback, %s!", customerName)

	m := mail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", e.cfg.Email.SMTP.FromName, e.cfg.Email.SMTP.FromAddress))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", e.generateInviteContent(inviteBody, surveyURL))

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send survey invite", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return contextutils.WrapError(contextutils.ErrMailSendFailed, err.Error())
	}

	e.logger.Info(ctx, "Survey invite sent successfully", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

func (e *EmailService) generateInviteContent(inviteBody, surveyURL string) string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: Arial, sans-serif; color: #333;\">\n")
	for _, para := range strings.Split(inviteBody, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>\n")
	}
	b.WriteString("<p>Please click the link below to provide your feedback:</p>\n")
	b.WriteString(fmt.Sprintf("<p><a href=\"%s\">%s</a></p>\n", surveyURL, html.EscapeString(surveyURL)))
	b.WriteString("<p>Thank you for your time!</p>\n")
	b.WriteString("</body></html>")
	return b.String()
}
