package models

// Booking is the read model served by the backend booking API. The front-end
// never mutates it locally; status changes become visible only via refetch.
type Booking struct {
	ID            string `json:"id"`
	GuestName     string `json:"guestName"`
	GuestEmail    string `json:"guestEmail"`
	GuestPhone    string `json:"guestPhone"`
	Property      string `json:"property"`
	Room          string `json:"room"`
	CheckIn       string `json:"checkIn"`
	CheckOut      string `json:"checkOut"`
	Guests        int    `json:"guests"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	BookingID     int64  `json:"bookingId"`
	UserID        int64  `json:"userId"`
	PropertyID    int64  `json:"propertyId"`
	Nights        int    `json:"nights"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	RoomCount     int    `json:"roomCount"`
}

// Refund is attached to a successful cancel response when a payment was
// refunded.
type Refund struct {
	Success bool  `json:"success"`
	Amount  int64 `json:"amount"`
}
