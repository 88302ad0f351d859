package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/checkout/internal/domain/order"
)

// Service handles email sending via SMTP
type Service struct {
	host         string
	port         string
	from         string
	merchantAddr string
}

// NewService creates a new email service
func NewService(host, port, from, merchantAddr string) *Service {
	return &Service{
		host:         host,
		port:         port,
		from:         from,
		merchantAddr: merchantAddr,
	}
}

// SendPaymentReceipt sends the customer a receipt for a paid order
func (s *Service) SendPaymentReceipt(o *order.Order) error {
	shortID := o.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	subject := fmt.Sprintf("Payment received for order %s", shortID)
	body := BuildPaymentReceiptBody(o)
	return s.send(o.CustomerEmail, subject, body, "text/html")
}

// SendMerchantNotification tells the merchant a new paid order arrived
func (s *Service) SendMerchantNotification(o *order.Order) error {
	if s.merchantAddr == "" {
		return nil
	}
	subject := fmt.Sprintf("New Order #%s", o.ID)
	body := BuildMerchantNotificationBody(o)
	return s.send(s.merchantAddr, subject, body, "text/plain")
}

func (s *Service) send(to, subject, body, contentType string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, contentType, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
