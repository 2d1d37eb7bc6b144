// Package notify delivers the run summary email with the export attached.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config carries the mail submission settings. Sender, Password, and
// Recipient must all be set for delivery to be attempted.
type Config struct {
	Sender    string
	Password  string
	Recipient string
	SMTPHost  string
	SMTPPort  int
}

// Mailer composes and sends the per-run notification.
type Mailer struct {
	cfg    Config
	logger *zap.Logger

	// send is swapped out by tests; the default dials SMTPS and sends.
	send func(msg *mail.Msg) error
}

// NewMailer builds a Mailer.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 465
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, logger: logger}
	m.send = m.dialAndSend
	return m
}

// Send emails the export file with a summary body. It returns false without
// attempting delivery when credentials are missing or the file does not
// exist, and false on a delivery failure; failures are logged, never raised.
func (m *Mailer) Send(exportPath string, recordCount int) bool {
	if m.cfg.Sender == "" || m.cfg.Password == "" || m.cfg.Recipient == "" {
		m.logger.Info("email settings not configured, skipping notification")
		return false
	}
	if exportPath == "" {
		m.logger.Info("no export file, skipping notification")
		return false
	}
	if _, err := os.Stat(exportPath); err != nil {
		m.logger.Warn("export file not found, skipping notification",
			zap.String("path", exportPath),
			zap.Error(err),
		)
		return false
	}

	msg, err := m.compose(exportPath, recordCount)
	if err != nil {
		m.logger.Error("compose notification", zap.Error(err))
		return false
	}
	if err := m.send(msg); err != nil {
		m.logger.Error("send notification", zap.Error(err))
		return false
	}

	m.logger.Info("notification sent",
		zap.String("recipient", m.cfg.Recipient),
		zap.Int("records", recordCount),
	)
	return true
}

func (m *Mailer) compose(exportPath string, recordCount int) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	today := time.Now().Format("2006-01-02")
	msg.Subject(fmt.Sprintf("Novas Licitações do Paraná - PNCP - %s", today))
	msg.SetBodyString(mail.TypeTextHTML, body(recordCount))
	msg.AttachFile(exportPath, mail.WithFileName(filepath.Base(exportPath)))
	return msg, nil
}

func body(recordCount int) string {
	return fmt.Sprintf(`<html>
<body>
	<h2>Relatório Diário de Licitações do Paraná - PNCP</h2>
	<p>Olá,</p>
	<p>Foram encontradas <strong>%d</strong> novas licitações relevantes no PNCP.</p>
	<p>Segue em anexo o arquivo CSV com os detalhes.</p>
	<p>Atenciosamente,<br>Sistema Automático de Monitoramento de Licitações</p>
</body>
</html>`, recordCount)
}

func (m *Mailer) dialAndSend(msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Sender),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}
