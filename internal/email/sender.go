// internal/email/sender.go
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"fitness-coach/pkg/logger"
)

// Sender delivers plan links over SendGrid. The email never contains the
// workout itself, only a link back to the stored plan.
type Sender struct {
	client *sendgrid.Client
	from   string
	appURL string
	logger *logger.Logger
}

func NewSender(apiKey, from, appURL string, log *logger.Logger) *Sender {
	return &Sender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		appURL: strings.TrimRight(appURL, "/"),
		logger: log,
	}
}

// Send mails the plan link for sessionID to the given address.
func (s *Sender) Send(ctx context.Context, to, sessionID string) error {
	if s.from == "" {
		return fmt.Errorf("sender address is not configured")
	}

	planURL := fmt.Sprintf("%s/plan/%s", s.appURL, sessionID)

	s.logger.Infow("Sending plan email", "to", to, "from", maskEmail(s.from), "session_id", sessionID)

	message := mail.NewSingleEmail(
		mail.NewEmail("Quantum Fitness", s.from),
		"Your Personalized Fitness Plan – Quantum Fitness",
		mail.NewEmail("", to),
		planURL,
		htmlTemplate(planURL),
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Errorw("Failed to send email", "error", err, "to", to, "session_id", sessionID)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Errorw("Email rejected by provider",
			"status", resp.StatusCode, "body", resp.Body, "to", to, "session_id", sessionID)
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}

// maskEmail hides the local part of an address in logs.
func maskEmail(addr string) string {
	at := strings.Index(addr, "@")
	if at < 3 {
		return addr
	}
	return addr[:2] + "***" + addr[at:]
}

func htmlTemplate(planURL string) string {
	return fmt.Sprintf(`
  <!DOCTYPE html>
  <html>
  <head>
    <meta charset="UTF-8" />
    <title>Your Fitness Plan</title>
  </head>
  <body style="margin:0;padding:0;background:#f4f6f8;font-family:Arial,Helvetica,sans-serif;">
    <table width="100%%" cellpadding="0" cellspacing="0">
      <tr>
        <td align="center" style="padding:40px 16px;">
          <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">

            <tr>
              <td style="background:#0f172a;padding:24px;color:#ffffff;">
                <h2 style="margin:0;font-size:22px;">Quantum Fitness Guru</h2>
                <p style="margin:6px 0 0;font-size:14px;opacity:0.9;">
                  Your AI-Powered Personal Training Assistant
                </p>
              </td>
            </tr>

            <tr>
              <td style="padding:32px;">
                <h3 style="margin-top:0;color:#111827;">
                  Your personalized fitness plan is ready 💪
                </h3>

                <p style="color:#374151;font-size:15px;line-height:1.6;">
                  You can view your full workout and recovery plan securely using the link below.
                  This link allows you to access your plan anytime, from any device.
                </p>

                <div style="text-align:center;margin:32px 0;">
                  <a href="%s"
                     style="background:#2563eb;color:#ffffff;text-decoration:none;
                            padding:14px 24px;border-radius:6px;
                            display:inline-block;font-weight:bold;">
                    View My Fitness Plan
                  </a>
                </div>

                <p style="color:#6b7280;font-size:13px;line-height:1.5;">
                  For your privacy, we don't include workout details directly in emails.
                  If you didn't request this plan, you can safely ignore this message.
                </p>
              </td>
            </tr>

            <tr>
              <td style="background:#f9fafb;padding:16px;text-align:center;
                         color:#9ca3af;font-size:12px;">
                © %d Quantum Fitness
              </td>
            </tr>

          </table>
        </td>
      </tr>
    </table>
  </body>
  </html>
  `, planURL, time.Now().Year())
}
