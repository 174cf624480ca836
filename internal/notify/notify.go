// Package notify delivers registration notifications to users.
//
// Delivery is best-effort and decoupled from the mutation that triggered
// it: a failed send is logged and discarded, never surfaced to the
// registration flow.
package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"sync"
)

// Sender performs a single synchronous delivery.
type Sender interface {
	Send(to, subject, body string) error
}

type message struct {
	to      string
	subject string
	body    string
}

// Dispatcher queues notifications and delivers them on a background
// goroutine so callers never block on the transport.
type Dispatcher struct {
	sender Sender
	ch     chan message
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher starts a Dispatcher delivering through sender.
func NewDispatcher(sender Sender) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		ch:     make(chan message, 256),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues a notification. User IDs are email addresses in this
// system. If the queue is full the notification is dropped with a log
// line rather than blocking the caller.
func (d *Dispatcher) Notify(userID, subject, body string) {
	select {
	case d.ch <- message{to: userID, subject: subject, body: body}:
	default:
		log.Printf("notify: queue full, dropping notification to %s", userID)
	}
}

// Close stops the dispatcher after draining queued notifications.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.ch) })
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.ch {
		if err := d.sender.Send(msg.to, msg.subject, msg.body); err != nil {
			log.Printf("notify: send to %s failed: %v", msg.to, err)
		}
	}
}

// SMTPSender delivers notifications as plain-text email.
type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Send delivers one email through the configured SMTP relay.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes notifications to the process log. Used when no SMTP
// relay is configured, typically in local development.
type LogSender struct{}

// Send logs the notification instead of delivering it.
func (LogSender) Send(to, subject, body string) error {
	log.Printf("notify: to=%s subject=%q", to, subject)
	return nil
}
