package models

// Review is a published property review.
type Review struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Avatar   string `json:"avatar"`
	Rating   int    `json:"rating"`
	Date     string `json:"date"`
	Text     string `json:"text"`
	Helpful  int    `json:"helpful"`
	Verified bool   `json:"verified"`
}

// PropertyReviews is the reviews page payload for one property.
type PropertyReviews struct {
	PropertyName       string      `json:"propertyName"`
	PropertyLocation   string      `json:"propertyLocation"`
	AverageRating      float64     `json:"averageRating"`
	TotalReviews       int         `json:"totalReviews"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
	Reviews            []Review    `json:"reviews"`
}

// PendingReview is a completed stay that is still waiting for the guest's
// review. Eligibility is decided by the view (checkout before today).
type PendingReview struct {
	BookingID     int64  `json:"bookingId"`
	PropertyID    int64  `json:"propertyId"`
	PropertyName  string `json:"propertyName"`
	PropertyImage string `json:"propertyImage"`
	Location      string `json:"location,omitempty"`
	CheckInDate   string `json:"checkInDate"`
	CheckOutDate  string `json:"checkOutDate"`
	Status        string `json:"status"`
}

// ReviewSubmission is what the customer surface sends to the backend.
type ReviewSubmission struct {
	BookingID  int64  `json:"bookingId"`
	PropertyID int64  `json:"propertyId"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}
