package auth

import (
	"context"
	"sync"
)

// NotificationKind identifies the message a notifier delivered.
type NotificationKind string

const (
	NotificationAccountConfirmationLink NotificationKind = "account_confirmation_link"
	NotificationPasswordResetCode       NotificationKind = "password_reset_code"
	NotificationPasswordResetLink       NotificationKind = "password_reset_link"
)

// NotificationEvent is raised after a successful dispatch. Payload holds the
// link or code that was sent.
type NotificationEvent struct {
	Kind      NotificationKind
	Recipient string
	Payload   string
}

// NotificationObserver receives dispatched notifications.
type NotificationObserver func(ctx context.Context, event NotificationEvent)

// ObservableNotifier hands every notification to its observers. Without a
// delegate it sends nothing, which suits development and tests. With a
// delegate, observers run only after the delegate delivered the message.
type ObservableNotifier struct {
	mu        sync.RWMutex
	observers []NotificationObserver
	delegate  Notifier
}

var _ Notifier = (*ObservableNotifier)(nil)

// NewObservableNotifier creates a notifier with the given observers attached.
func NewObservableNotifier(observers ...NotificationObserver) *ObservableNotifier {
	return NewObservedNotifier(nil, observers...)
}

// NewObservedNotifier delivers through delegate and reports each successful
// delivery to the observers.
func NewObservedNotifier(delegate Notifier, observers ...NotificationObserver) *ObservableNotifier {
	n := &ObservableNotifier{delegate: delegate}
	for _, o := range observers {
		n.Observe(o)
	}
	return n
}

// Observe attaches an observer. Nil observers are ignored.
func (n *ObservableNotifier) Observe(observer NotificationObserver) {
	if observer == nil {
		return
	}
	n.mu.Lock()
	n.observers = append(n.observers, observer)
	n.mu.Unlock()
}

func (n *ObservableNotifier) SendConfirmationLink(ctx context.Context, recipient, link string) error {
	return n.notify(ctx, NotificationEvent{
		Kind:      NotificationAccountConfirmationLink,
		Recipient: recipient,
		Payload:   link,
	}, func(d Notifier) error {
		return d.SendConfirmationLink(ctx, recipient, link)
	})
}

func (n *ObservableNotifier) SendPasswordResetLink(ctx context.Context, recipient, link string) error {
	return n.notify(ctx, NotificationEvent{
		Kind:      NotificationPasswordResetLink,
		Recipient: recipient,
		Payload:   link,
	}, func(d Notifier) error {
		return d.SendPasswordResetLink(ctx, recipient, link)
	})
}

func (n *ObservableNotifier) SendPasswordResetCode(ctx context.Context, recipient, code string) error {
	return n.notify(ctx, NotificationEvent{
		Kind:      NotificationPasswordResetCode,
		Recipient: recipient,
		Payload:   code,
	}, func(d Notifier) error {
		return d.SendPasswordResetCode(ctx, recipient, code)
	})
}

func (n *ObservableNotifier) observesOnly() bool {
	return n.delegate == nil
}

func (n *ObservableNotifier) notify(ctx context.Context, event NotificationEvent, deliver func(Notifier) error) error {
	if err := ctx.Err(); err != nil {
		return NewDispatchError(err, "notification cancelled")
	}

	if n.delegate != nil {
		if err := deliver(n.delegate); err != nil {
			return err
		}
	}

	n.mu.RLock()
	observers := make([]NotificationObserver, len(n.observers))
	copy(observers, n.observers)
	n.mu.RUnlock()

	for _, observer := range observers {
		observer(ctx, event)
	}
	return nil
}

// deliveryWatcher is implemented by notifiers that only watch deliveries.
type deliveryWatcher interface {
	observesOnly() bool
}

// MultiNotifier delivers each notification through every notifier in order
// and stops at the first failure. Observe-only notifiers run last, once every
// delivery succeeded.
type MultiNotifier []Notifier

var _ Notifier = MultiNotifier(nil)

func (m MultiNotifier) SendConfirmationLink(ctx context.Context, recipient, link string) error {
	return m.each(func(n Notifier) error {
		return n.SendConfirmationLink(ctx, recipient, link)
	})
}

func (m MultiNotifier) SendPasswordResetLink(ctx context.Context, recipient, link string) error {
	return m.each(func(n Notifier) error {
		return n.SendPasswordResetLink(ctx, recipient, link)
	})
}

func (m MultiNotifier) SendPasswordResetCode(ctx context.Context, recipient, code string) error {
	return m.each(func(n Notifier) error {
		return n.SendPasswordResetCode(ctx, recipient, code)
	})
}

func (m MultiNotifier) each(send func(Notifier) error) error {
	var watchers []Notifier
	for _, n := range m {
		if n == nil {
			continue
		}
		if o, ok := n.(deliveryWatcher); ok && o.observesOnly() {
			watchers = append(watchers, n)
			continue
		}
		if err := send(n); err != nil {
			return NewDispatchError(err, "notification delivery failed")
		}
	}

	for _, n := range watchers {
		if err := send(n); err != nil {
			return NewDispatchError(err, "notification delivery failed")
		}
	}
	return nil
}
