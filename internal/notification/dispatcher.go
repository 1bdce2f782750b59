package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/company"
)

// BrandingSource loads the current company settings. It is read on every send.
type BrandingSource interface {
	Get(ctx context.Context) (*company.Settings, error)
}

type Dispatcher struct {
	sender      Sender
	renderer    *Renderer
	branding    BrandingSource
	from        string
	sendTimeout time.Duration
	logger      *slog.Logger
}

type DispatcherConfig struct {
	FromEmail   string
	FromName    string
	SendTimeout time.Duration
}

func NewDispatcher(sender Sender, renderer *Renderer, branding BrandingSource, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	from := cfg.FromEmail
	if cfg.FromName != "" && cfg.FromEmail != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		sender:      sender,
		renderer:    renderer,
		branding:    branding,
		from:        from,
		sendTimeout: cfg.SendTimeout,
		logger:      logger,
	}
}

// SendDocumentEmail validates, renders with freshly loaded branding and sends.
func (d *Dispatcher) SendDocumentEmail(ctx context.Context, email DocumentEmail) (Receipt, error) {
	if err := email.Validate(); err != nil {
		return Receipt{}, err
	}

	settings, err := d.branding.Get(ctx)
	if err != nil {
		d.logger.Warn("branding unavailable, using defaults", "error", err)
		settings = nil
	}

	subject, body, err := d.renderer.Render(email, BrandingFrom(settings))
	if err != nil {
		return Receipt{}, internal.NewInternalError("failed to render email", err)
	}

	sendCtx, cancel := internal.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	id, err := d.sender.Send(sendCtx, &Message{
		From:    d.from,
		To:      email.To,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		d.logger.Error("document email failed", "to", email.To, "error", err)
		return Receipt{}, internal.NewDependencyError("failed to send email", internal.ErrCodeEmailFailed, err)
	}

	d.logger.Info("document email sent", "to", email.To, "message_id", id)
	return Receipt{ID: id}, nil
}
