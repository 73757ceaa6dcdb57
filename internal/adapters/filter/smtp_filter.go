package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/email-triage/internal/adapters/extract"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

// SMTPFilter is a content filter: it accepts mail over SMTP, stamps the
// triage result into the headers and hands the message to the next hop
type SMTPFilter struct {
	triager  ports.Triager
	cfg      config.SMTPConfig
	logger   *zap.Logger
	server   *smtp.Server
	listener net.Listener
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(triager ports.Triager, cfg config.SMTPConfig, logger *zap.Logger) *SMTPFilter {
	if cfg.CategoryHeader == "" {
		cfg.CategoryHeader = "X-Email-Triage-Category"
	}
	if cfg.SourceHeader == "" {
		cfg.SourceHeader = "X-Email-Triage-Source"
	}
	if cfg.RuleHeader == "" {
		cfg.RuleHeader = "X-Email-Triage-Rule"
	}
	if cfg.ClassifyTimeout <= 0 {
		cfg.ClassifyTimeout = 15 * time.Second
	}

	return &SMTPFilter{
		triager: triager,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start binds the listen address and serves in the background
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = f.cfg.Domain
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	l, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.listener = l

	f.logger.Info("SMTP filter starting",
		zap.String("address", l.Addr().String()),
		zap.Bool("relay", f.cfg.RelayEnabled))

	go func() {
		if err := f.server.Serve(l); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP filter
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Addr returns the bound address once started
func (f *SMTPFilter) Addr() string {
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// StampHeaders prepends the triage headers to a raw message
func StampHeaders(raw []byte, result core.ClassificationResult, categoryHeader, sourceHeader, ruleHeader string) []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "%s: %s\r\n", categoryHeader, headerValue(string(result.Category)))
	fmt.Fprintf(&out, "%s: %s\r\n", sourceHeader, headerValue(string(result.Source)))
	fmt.Fprintf(&out, "%s: %s\r\n", ruleHeader, headerValue(result.RuleApplied))
	out.Write(raw)
	return out.Bytes()
}

// headerValue keeps a value on one header line
func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// relay sends the stamped message to the next hop
func (f *SMTPFilter) relay(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.cfg.RelayAddress, fmt.Sprintf("%d", f.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	filter *SMTPFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and forwards it with the triage headers
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter
	logger := f.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("from", s.sender))

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		logger.Error("Failed to parse email message", zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	text, err := extract.MessageText(msg)
	if err != nil {
		logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.ClassifyTimeout)
	defer cancel()

	result, _ := f.triager.Classify(ctx, text)
	stamped := StampHeaders(raw, result, f.cfg.CategoryHeader, f.cfg.SourceHeader, f.cfg.RuleHeader)

	if f.cfg.RelayEnabled {
		if err := f.relay(s.sender, s.recipients, stamped); err != nil {
			logger.Error("Failed to relay message", zap.Error(err))
			return &smtp.SMTPError{
				Code:         451,
				EnhancedCode: smtp.EnhancedCode{4, 4, 0},
				Message:      "Relay temporarily unavailable",
			}
		}
	}

	logger.Info("Processed email",
		zap.Strings("recipients", s.recipients),
		zap.String("subject", msg.Header.Get("Subject")),
		zap.String("category", string(result.Category)),
		zap.String("source", string(result.Source)),
		zap.Bool("relayed", f.cfg.RelayEnabled))

	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
