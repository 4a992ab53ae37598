package app

import "github.com/streamkit/popcorn/internal/lib/text"

type NotifyType int

const (
	_                        = iota
	NotifySuccess NotifyType = iota + 1
	NotifyInfo
	NotifyWarn
	NotifyError
)

// Notify is a user-facing message, rendered by whatever front end is
// listening as a dismissible alert.
type Notify struct {
	Type    NotifyType
	Message string
}

func NewNotifyInfo(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifyInfo,
		Message: text.Fmt(msg, args...),
	}
}

func NewNotifySuccess(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifySuccess,
		Message: text.Fmt(msg, args...),
	}
}

func NewNotifyWarn(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifyWarn,
		Message: text.Fmt(msg, args...),
	}
}

func NewNotifyError(msg string, args ...any) Notify {
	return Notify{
		Type:    NotifyError,
		Message: text.Fmt(msg, args...),
	}
}

func (Notify) Kind() string {
	return "notify"
}

// NetworkError is broadcast when a provider call fails at the transport or
// HTTP level. The call that caused it yields no items.
type NetworkError struct {
	Provider string
	Err      error
}

func (NetworkError) Kind() string {
	return "network-error"
}

// AuthError is broadcast on a 403 from an authenticated endpoint. It is a
// distinct signal from NetworkError so listeners can offer re-authentication;
// the stored credential is only deleted on explicit sign-out.
type AuthError struct {
	Service string
}

func (AuthError) Kind() string {
	return "auth-error"
}
