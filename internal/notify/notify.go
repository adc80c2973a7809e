package notify

import (
	"fmt"
	"log"
	"os/exec"
)

const appName = "burnsub"

type Notifier interface {
	Notify(title, body string)
	Error(msg string)
}

// MessageType identifies a job event that can raise a notification.
type MessageType int

const (
	MsgJobFinished MessageType = iota
	MsgNoSubtitles
	MsgJobFailed
	MsgConfigReloaded
)

// Message is a resolved notification. Body may hold one %s verb for the
// video or output path.
type Message struct {
	Title   string
	Body    string
	IsError bool
}

// MessageDef describes a message type and its defaults. ConfigKey matches
// the toml key under [notifications.messages].
type MessageDef struct {
	Type         MessageType
	ConfigKey    string
	DefaultTitle string
	DefaultBody  string
	IsError      bool
}

var MessageDefs = []MessageDef{
	{MsgJobFinished, "job_finished", "Subtitles Ready", "Wrote %s", false},
	{MsgNoSubtitles, "no_subtitles", "No Speech Found", "No text recognized in %s, nothing rendered", false},
	{MsgJobFailed, "job_failed", "Subtitling Failed", "%s", true},
	{MsgConfigReloaded, "config_reloaded", "Config Reloaded", "", false},
}

// DefaultMessages returns every message at its default text.
func DefaultMessages() map[MessageType]Message {
	msgs := make(map[MessageType]Message, len(MessageDefs))
	for _, def := range MessageDefs {
		msgs[def.Type] = Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}
	}
	return msgs
}

// New returns the notifier for a notifications.type value.
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

// Sender formats configured messages and hands them to a Notifier.
type Sender struct {
	Notifier Notifier
	Messages map[MessageType]Message
}

func NewSender(n Notifier, msgs map[MessageType]Message) *Sender {
	if n == nil {
		n = Nop{}
	}
	if msgs == nil {
		msgs = DefaultMessages()
	}
	return &Sender{Notifier: n, Messages: msgs}
}

func (s *Sender) Send(t MessageType, arg string) {
	msg, ok := s.Messages[t]
	if !ok {
		return
	}
	body := msg.Body
	if arg != "" && body != "" {
		body = fmt.Sprintf(body, arg)
	}
	if msg.IsError {
		s.Notifier.Error(body)
		return
	}
	s.Notifier.Notify(msg.Title, body)
}

type Desktop struct{}

func (Desktop) Notify(title, body string) {
	cmd := exec.Command("notify-send", "-a", appName, title, body)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", appName, "-u", "critical", "burnsub error", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) Notify(title, body string) {
	log.Printf("Notification: burnsub %s - %s", title, body)
}

func (Log) Error(msg string) {
	log.Printf("Notification: burnsub Error - %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Notify(title, body string) {}
func (Nop) Error(msg string)          {}
