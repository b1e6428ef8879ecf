package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
)

// MailServer sends transactional email through the Resend API. When no
// API key is configured every send degrades to a logged no-op, email is
// never a hard dependency of provisioning.
type MailServer struct {
	cfg    *MailConfig
	client http.Client
}

var _ interfaces.Mailer = (*MailServer)(nil)

func NewMailServer(cfg *MailConfig) *MailServer {
	return &MailServer{
		cfg:    cfg,
		client: http.Client{Timeout: 15 * time.Second},
	}
}

func (m *MailServer) SendWelcome(ctx context.Context, data dto.WelcomeMail) error {
	if m.cfg.APIKey == "" {
		slog.Warn("skipping welcome email, RESEND_API_KEY not configured", "to", data.AdminEmail)
		return nil
	}
	mailData := WelcomeAgencyData{
		AgencyName:  data.AgencyName,
		InstanceURL: data.InstanceURL,
		SetupURL:    fmt.Sprintf("%v/setup?token=%v", data.InstanceURL, data.SetupToken),
	}
	body := fmt.Sprintf(`
<h2>Welcome to The Lost Project!</h2>
<p>Your dedicated instance has been provisioned for <strong>%v</strong>.</p>
<p><a href="%v">Claim your instance and set your password</a></p>
<p>The setup link is valid for 24 hours. After that, ask us to resend it.</p>
<p>Instance URL: <a href="%v">%v</a></p>`,
		mailData.AgencyName, mailData.SetupURL, mailData.InstanceURL, mailData.InstanceURL)

	slog.Info("sending welcome email", "to", data.AdminEmail)
	return m.send(ctx, data.AdminEmail, mailData.GetSubject(), body)
}

// SendProvisioningStatus notifies the requesting admin about the outcome
// of a run. It is a side notification, a send failure is logged and
// swallowed so it can never mask the primary provisioning result.
func (m *MailServer) SendProvisioningStatus(ctx context.Context, data dto.ProvisioningStatusMail) {
	if m.cfg.APIKey == "" {
		slog.Warn("skipping status email, RESEND_API_KEY not configured", "agency", data.AgencyName)
		return
	}

	var mailData MailData
	var body string
	if data.Succeeded {
		mailData = ProvisioningSuccessData{AgencyName: data.AgencyName, AdminEmail: data.AdminEmail, InstanceURL: data.InstanceURL}
		body = fmt.Sprintf(`
<h2>Agency successfully provisioned</h2>
<p><strong>Agency:</strong> %v</p>
<p><strong>Admin email:</strong> %v</p>
<p><strong>Instance URL:</strong> <a href="%v">%v</a></p>`,
			data.AgencyName, data.AdminEmail, data.InstanceURL, data.InstanceURL)
	} else {
		mailData = ProvisioningFailureData{AgencyName: data.AgencyName, AdminEmail: data.AdminEmail, ErrorMessage: data.ErrorMessage}
		body = fmt.Sprintf(`
<h2>Agency provisioning failed</h2>
<p><strong>Agency:</strong> %v</p>
<p><strong>Error:</strong></p>
<pre>%v</pre>
<p>Check the logs and retry provisioning.</p>`,
			data.AgencyName, data.ErrorMessage)
	}

	to := m.cfg.AdminEmail
	if to == "" {
		to = data.AdminEmail
	}
	if err := m.send(ctx, to, mailData.GetSubject(), body); err != nil {
		slog.Error("could not send provisioning status email", "agency", data.AgencyName, "err", err)
	}
}

func (m *MailServer) SendCommentNotification(ctx context.Context, data dto.CommentMail) error {
	if m.cfg.APIKey == "" {
		slog.Warn("skipping comment notification, RESEND_API_KEY not configured", "to", data.RecipientEmail)
		return nil
	}
	mailData := NewCommentData{
		ProjectName: data.ProjectName,
		AuthorName:  data.AuthorName,
		CommentText: data.CommentText,
		CommentURL:  data.CommentURL,
	}
	body := fmt.Sprintf(`
<p><strong>%v</strong> commented on <strong>%v</strong>:</p>
<blockquote>%v</blockquote>
<p><a href="%v">View the comment</a></p>`,
		mailData.AuthorName, mailData.ProjectName, mailData.CommentText, mailData.CommentURL)

	return m.send(ctx, data.RecipientEmail, mailData.GetSubject(), body)
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *MailServer) send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.cfg.FromAddress,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return errs.PlatformAPIError{
			Platform:   "resend",
			Operation:  "send email",
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	return nil
}
