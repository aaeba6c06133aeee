package types

import (
	"log/slog"

	"github.com/google/uuid"
)

type (
	GitHubToken      string
	WebhookSecret    string
	TelegramBotToken string

	RepoID       int64
	RepoFullName string
	ReleaseID    int64
	ChatID       string

	HookStatus     string
	DeliverySource string
	OwnerType      string

	RequestID string
)

const (
	HookStatusPending     HookStatus = "pending"
	HookStatusActive      HookStatus = "active"
	HookStatusFailed      HookStatus = "failed"
	HookStatusSkipped     HookStatus = "skipped"
	HookStatusUnsupported HookStatus = "unsupported"
)

const (
	SourcePush DeliverySource = "push"
	SourcePoll DeliverySource = "poll"
)

const (
	OwnerIndividual   OwnerType = "individual"
	OwnerOrganization OwnerType = "organization"
)

// IsValid reports whether the status is one of the known hook states.
func (x HookStatus) IsValid() bool {
	switch x {
	case HookStatusPending, HookStatusActive, HookStatusFailed, HookStatusSkipped, HookStatusUnsupported:
		return true
	}
	return false
}

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (x GitHubToken) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubToken) String() string {
	return "***********"
}

func (x WebhookSecret) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x WebhookSecret) String() string {
	return "***********"
}

func (x TelegramBotToken) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x TelegramBotToken) String() string {
	return "***********"
}
