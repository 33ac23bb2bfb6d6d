// Package mail handles outbound transactional email: vendor reorder
// requests, account verification, and password resets. Messages are rendered
// from templates, dispatched through an EmailSender, and tracked in an
// in-memory log so failed sends can be retried.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message represents a single outbound email.
type Message struct {
	ID           string            `json:"id"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender is the interface for the underlying mail transport.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ---------------------------------------------------------------------------
// Template Engine
// ---------------------------------------------------------------------------

// Template defines a reusable email template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine renders templates with {{key}} placeholder replacement.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates an engine preloaded with the built-in templates.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.loadBuiltIn()
	return e
}

func (e *TemplateEngine) loadBuiltIn() {
	builtIn := []Template{
		{
			ID:      "reorder-request",
			Name:    "Stock Reorder Request",
			Subject: "Reorder request: {{item_name}}",
			Body: "Hello {{vendor_name}},\n\n" +
				"We would like to order {{quantity}} units of {{item_name}}.\n\n" +
				"To accept this order, open:\n{{confirm_link}}\n\n" +
				"To decline it, open:\n{{reject_link}}\n\n" +
				"Order reference: {{order_id}}\n",
		},
		{
			ID:      "verify-email",
			Name:    "Email Verification",
			Subject: "Verify your email address",
			Body:    "Hello {{full_name}},\n\nPlease verify your email address by opening:\n{{verify_link}}\n",
		},
		{
			ID:      "password-reset",
			Name:    "Password Reset",
			Subject: "Password reset request",
			Body:    "You requested a password reset. Open the following link to choose a new password:\n{{reset_link}}\n",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Mock Sender (test double)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

// Manager orchestrates rendering, sending, storage and retry of outbound
// email.
type Manager struct {
	sender    EmailSender
	templates *TemplateEngine
	mu        sync.RWMutex
	messages  map[string]*Message
}

// NewManager constructs a Manager.
func NewManager(sender EmailSender, tpl *TemplateEngine) *Manager {
	return &Manager{
		sender:    sender,
		templates: tpl,
		messages:  make(map[string]*Message),
	}
}

// Send dispatches a message, assigns an ID and timestamps, and records the
// result.
func (m *Manager) Send(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now().UTC()
	msg.Status = "pending"

	sendErr := m.sender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)
	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
	}

	m.mu.Lock()
	m.messages[msg.ID] = msg
	m.mu.Unlock()

	return sendErr
}

// SendFromTemplate renders a template and sends the resulting message.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Message, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	msg := &Message{
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	if err := m.Send(ctx, msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// Get retrieves a message by ID.
func (m *Manager) Get(_ context.Context, id string) (*Message, error) {
	m.mu.RLock()
	msg, ok := m.messages[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return msg, nil
}

// Retry re-sends a failed message. Returns an error if the message is not in
// "failed" status.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	msg, ok := m.messages[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if msg.Status != "failed" {
		return fmt.Errorf("message %q is not in failed status (current: %s)", id, msg.Status)
	}

	sendErr := m.sender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Body)

	m.mu.Lock()
	if sendErr != nil {
		msg.Status = "failed"
		msg.Error = sendErr.Error()
	} else {
		msg.Status = "sent"
		sentAt := time.Now().UTC()
		msg.SentAt = &sentAt
		msg.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns counts of messages grouped by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, msg := range m.messages {
		stats[msg.Status]++
	}
	return stats
}
