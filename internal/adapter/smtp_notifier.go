package adapter

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
	"github.com/greenobird/service-booking/internal/domain/booking"
)

// Notifier delivers a confirmation for a persisted booking.
type Notifier interface {
	Notify(ctx context.Context, b *booking.Booking) error
	Channel() string
}

// SMTPNotifier emails the guest over SMTP with implicit TLS on port 465,
// or STARTTLS on any other port.
type SMTPNotifier struct {
	host         string
	port         int
	from         string
	password     string
	businessName string
	logger       *zap.Logger
}

// NewSMTPNotifier creates a mail notifier authenticating as from.
func NewSMTPNotifier(host string, port int, from, password, businessName string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:         host,
		port:         port,
		from:         from,
		password:     password,
		businessName: businessName,
		logger:       logger,
	}
}

// Channel names this notifier in outcomes and logs.
func (n *SMTPNotifier) Channel() string { return "email" }

// Notify sends the confirmation mail to the booking's email address.
func (n *SMTPNotifier) Notify(ctx context.Context, b *booking.Booking) error {
	if n.from == "" || n.password == "" {
		return domain.NewNotificationError(n.Channel(), fmt.Errorf("SMTP credentials missing"))
	}

	subject, body := ConfirmationMessage(b, n.businessName)
	msg := buildMail(n.from, b.Email(), subject, body)

	if err := n.send(ctx, b.Email(), msg); err != nil {
		n.logger.Warn("confirmation email failed",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
		return domain.NewNotificationError(n.Channel(), err)
	}

	n.logger.Info("confirmation email sent", zap.String("booking_id", b.ID().String()))
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(n.host, strconv.Itoa(n.port))
	tlsCfg := &tls.Config{ServerName: n.host}

	var conn net.Conn
	var err error
	if n.port == 465 {
		conn, err = (&tls.Dialer{Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if n.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if err := c.Auth(smtp.PlainAuth("", n.from, n.password, n.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(n.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

// ConfirmationMessage renders the subject and plain-text body of the guest email.
func ConfirmationMessage(b *booking.Booking, businessName string) (string, string) {
	subject := "Booking Confirmation - " + businessName

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", b.Name())
	fmt.Fprintf(&sb, "Thank you for booking %s!\n", businessName)
	fmt.Fprintf(&sb, "Check-In: %s\n", b.CheckIn())
	fmt.Fprintf(&sb, "Check-Out: %s\n", b.CheckOut())
	fmt.Fprintf(&sb, "Guests: %d\n", b.Guests())
	fmt.Fprintf(&sb, "Amount Paid: ₹%d\n", b.Amount())
	if b.PaymentOrderID() != "" {
		fmt.Fprintf(&sb, "Order ID: %s\n", b.PaymentOrderID())
	}
	sb.WriteString("\nWe look forward to hosting you!\n\n")
	fmt.Fprintf(&sb, "Regards,\n%s Team\n", businessName)
	return subject, sb.String()
}

func buildMail(from, to, subject, body string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(&sb, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(sb.String())
}
