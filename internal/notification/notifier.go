package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"canteenadmin/internal/bus"
)

// Notifier turns bus events into inbox entries. It is the only writer for
// cross-cutting notifications; handlers that already hold a transaction use
// InsertTx directly instead.
type Notifier struct {
	Repo   *Repository
	Logger *zap.Logger
}

// Start subscribes to the event topics the inbox cares about. Returns a stop
// func that unsubscribes everything.
func (n *Notifier) Start(b *bus.Bus) (stop func()) {
	unsubs := []func(){
		b.Subscribe(bus.TopicRegistrationSubmitted, n.onRegistrationSubmitted),
		b.Subscribe(bus.TopicTopUpResolved, n.onTopUpResolved),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (n *Notifier) onRegistrationSubmitted(payload any) {
	ev, ok := payload.(bus.RegistrationSubmitted)
	if !ok {
		return
	}
	// Account-less: lands in the shared admin inbox.
	_, err := n.Repo.Insert(context.Background(), nil,
		"New registration",
		fmt.Sprintf("%s is waiting for approval", ev.Name),
		&Data{Kind: KindRegistration, Registration: &RegistrationData{AccountID: ev.AccountID, Name: ev.Name}},
	)
	if err != nil {
		n.Logger.Error("insert registration notification", zap.Error(err))
	}
}

func (n *Notifier) onTopUpResolved(payload any) {
	ev, ok := payload.(bus.TopUpResolved)
	if !ok {
		return
	}
	title := "Top-up approved"
	body := "Your wallet has been credited"
	if !ev.Approved {
		title = "Top-up rejected"
		body = "Your payment proof could not be verified"
	}
	_, err := n.Repo.Insert(context.Background(), &ev.AccountID, title, body,
		&Data{Kind: KindTopUp, TopUp: &TopUpData{TopUpID: ev.TopUpID, Approved: ev.Approved}},
	)
	if err != nil {
		n.Logger.Error("insert topup notification", zap.Error(err))
	}
}
