// Package badge computes the pending counts shown next to the navigation
// entries. Counts are recomputed from storage on every poll; nothing is
// cached server-side.
package badge

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"canteenadmin/internal/account"
	"canteenadmin/internal/api"
	"canteenadmin/internal/notification"
	"canteenadmin/internal/reservation"
	"canteenadmin/internal/topup"
)

type Counts struct {
	PendingRegistrations int `json:"pendingRegistrations"`
	PendingReservations  int `json:"pendingReservations"`
	PendingTopUps        int `json:"pendingTopups"`
	UnreadNotifications  int `json:"unreadNotifications"`
}

type Handlers struct {
	Accounts      *account.Repository
	Reservations  *reservation.Repository
	TopUps        *topup.Repository
	Notifications *notification.Repository
	Logger        *zap.Logger
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	// The four counts are independent queries; run them concurrently so
	// the poll stays cheap.
	var c Counts
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		c.PendingRegistrations, err = h.Accounts.CountPending(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.PendingReservations, err = h.Reservations.CountPending(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.PendingTopUps, err = h.TopUps.CountPending(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.UnreadNotifications, err = h.Notifications.CountUnread(ctx, identity.AccountID, true)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, c)
}

func (h Handlers) fail(w http.ResponseWriter, err error) {
	h.Logger.Error("compute badge counts", zap.Error(err))
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
