package models

import "time"

// Reservation is an active, not-yet-checked-out stay. The room fields
// are a snapshot taken at booking time so later catalog edits never
// change what a guest was quoted.
type Reservation struct {
	ID           int64     `json:"id"`
	RoomName     string    `json:"room_name"`
	Room         Room      `json:"room"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Nights       int       `json:"nights"`
	Guests       int       `json:"guests"`
	RatePerNight int64     `json:"rate_per_night"`
	TotalCost    int64     `json:"total_cost"`
	Guest        GuestInfo `json:"guest"`
	Channel      string    `json:"channel"` // online, walk-in
	Status       string    `json:"status"`  // pending
	CreatedAt    time.Time `json:"created_at"`
}

type GuestInfo struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Gender         string `json:"gender,omitempty"`
	Phone          string `json:"phone" validate:"required"`
	SpecialRequest string `json:"special_request,omitempty"`
}

// PaymentDetails is captured at check-out time. DaysStayed and
// TotalAmount are computed server-side, never taken from input.
type PaymentDetails struct {
	BillingName    string `json:"billing_name" validate:"required"`
	BillingAddress string `json:"billing_address" validate:"required"`
	Method         string `json:"method" validate:"required,oneof=cash gcash"`
	GcashNumber    string `json:"gcash_number,omitempty" validate:"required_if=Method gcash"`
	DaysStayed     int    `json:"days_stayed"`
	TotalAmount    int64  `json:"total_amount"`
}

// HistoryRecord archives a reservation at check-out. It carries every
// reservation field plus the checkout timestamp and payment details,
// and is never mutated after insert.
type HistoryRecord struct {
	ID            int64          `json:"id"`
	ReservationID int64          `json:"reservation_id"`
	RoomName      string         `json:"room_name"`
	Room          Room           `json:"room"`
	CheckIn       time.Time      `json:"check_in"`
	CheckOut      time.Time      `json:"check_out"`
	Nights        int            `json:"nights"`
	Guests        int            `json:"guests"`
	RatePerNight  int64          `json:"rate_per_night"`
	TotalCost     int64          `json:"total_cost"`
	Guest         GuestInfo      `json:"guest"`
	Channel       string         `json:"channel"`
	BookedAt      time.Time      `json:"booked_at"`
	CheckedOutAt  time.Time      `json:"checked_out_at"`
	Payment       PaymentDetails `json:"payment"`
}
