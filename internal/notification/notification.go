// Package notification implements the inbox shown in the admin navigation:
// registration, reservation, and top-up events, each carrying a typed payload
// discriminated by Kind so consumers never probe for key presence.
package notification

import "time"

type Kind string

const (
	KindRegistration Kind = "registration"
	KindReservation  Kind = "reservation"
	KindTopUp        Kind = "topup"
)

// Data is the tagged payload variant. Exactly one of the pointers matching
// Kind is set.
type Data struct {
	Kind         Kind              `json:"kind"`
	Registration *RegistrationData `json:"registration,omitempty"`
	Reservation  *ReservationData  `json:"reservation,omitempty"`
	TopUp        *TopUpData        `json:"topup,omitempty"`
}

type RegistrationData struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
}

type ReservationData struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
}

type TopUpData struct {
	TopUpID  string `json:"topupId"`
	Approved bool   `json:"approved"`
}

// Notification belongs to one account, or to no account (AccountID nil),
// which lands it in the shared admin inbox.
type Notification struct {
	ID        string    `json:"id"`
	AccountID *string   `json:"accountId,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	Data      *Data     `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
