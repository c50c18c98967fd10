package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport — запрос не удался после всех попыток.
	ErrTransport = errors.New("transport failure")
	// ErrRelayAuth — relay не настроен или отверг учётные данные.
	ErrRelayAuth = errors.New("relay authentication failed")
	// ErrUnexpectedStatus — ответ с кодом, отличным от 200.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// TransportError — итоговая ошибка Fetch после исчерпания попыток.
// Для харвеста не фатальна: страница даёт ноль карточек.
type TransportError struct {
	Address  string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %q failed after %d attempt(s): %v", e.Address, e.Attempts, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// RelayAuthError — ошибка конфигурации relay. Фатальна для харвеста;
// молчаливого отката на прямой транспорт нет.
type RelayAuthError struct {
	Status int
	Reason string
}

func (e *RelayAuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status=%d: %s", ErrRelayAuth, e.Status, e.Reason)
	}

	return fmt.Sprintf("%s: %s", ErrRelayAuth, e.Reason)
}

func (e *RelayAuthError) Is(target error) bool { return target == ErrRelayAuth }

// StatusError — неуспешный HTTP-код одной попытки.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status=%d", ErrUnexpectedStatus, e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }
