package client

import (
	"strconv"
)

// Notification is a short user-visible message.
type Notification struct {
	Title       string
	Description string
	Destructive bool
}

// Notifier displays notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

func invalidTypeNotification() Notification {
	return Notification{
		Title:       "Invalid file type",
		Description: "Please upload a PDF, DOC, DOCX, or TXT file.",
		Destructive: true,
	}
}

func tooLargeNotification() Notification {
	return Notification{
		Title:       "File too large",
		Description: "Please upload a file smaller than 20MB.",
		Destructive: true,
	}
}

func completeNotification(score float64) Notification {
	return Notification{
		Title:       "Analysis complete!",
		Description: "Your resume scored " + FormatScore(score) + "/100",
	}
}

func failedNotification(msg string) Notification {
	return Notification{Title: "Analysis failed", Description: msg, Destructive: true}
}

// FormatScore prints a score without trailing zeros (85, 72.5).
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
