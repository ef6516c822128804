package app

import (
	"fmt"

	"github.com/quintans/tvshelf/internal/model"
)

type NotifyType int

const (
	NotifyInfo NotifyType = iota + 1
	NotifyError
)

type Notify struct {
	Type    NotifyType
	Message string
}

func NewNotifyInfo(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifyInfo,
		Message: format(msg, args...),
	}
}

func NewNotifyError(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifyError,
		Message: format(msg, args...),
	}
}

func format(msg string, args ...any) string {
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func (Notify) Kind() string {
	return "notify"
}

// ListChanged is published after a personal list was mutated and persisted.
type ListChanged struct {
	List model.ListName
	Size int
}

func (ListChanged) Kind() string {
	return "list-changed"
}
