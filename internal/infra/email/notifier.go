package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail, conversionID, sourceName, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	msg := composeFailure(n.from, userEmail, conversionID, sourceName, errorMsg)

	if err := smtp.SendMail(addr, nil, n.from, []string{userEmail}, []byte(msg)); err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", userEmail),
			zap.String("conversion_id", conversionID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", userEmail),
		zap.String("conversion_id", conversionID),
	)
	return nil
}

func composeFailure(from, to, conversionID, sourceName, errorMsg string) string {
	subject := fmt.Sprintf("v2f - Frame conversion failed [%s]", sourceName)

	var body strings.Builder
	body.WriteString("Hello,\r\n\r\n")
	body.WriteString("Something went wrong while converting your video. Partial frames were removed.\r\n\r\n")
	fmt.Fprintf(&body, "Conversion ID: %s\r\n", conversionID)
	fmt.Fprintf(&body, "Video: %s\r\n", sourceName)
	fmt.Fprintf(&body, "Error: %s\r\n\r\n", errorMsg)
	body.WriteString("You can request the conversion again once the video is fixed.\r\n\r\n")
	body.WriteString("-- v2f frame converter")

	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body.String())
}
