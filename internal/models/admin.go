package models

// Owner is a property owner row on the admin console.
type Owner struct {
	ID                 int64  `json:"id"`
	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	City               string `json:"city"`
	Province           string `json:"province"`
	TotalProperties    int    `json:"totalProperties"`
	SubscriptionStatus string `json:"subscriptionStatus"`
	Status             string `json:"status"`
}

// Invoice is a subscription transaction row on the admin payments page.
type Invoice struct {
	ID        int64  `json:"id"`
	OwnerName string `json:"ownerName"`
	Month     string `json:"month"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Status    string `json:"status"`
}

// PaymentSummary backs the cards above the transactions table.
type PaymentSummary struct {
	CollectedThisMonth int64 `json:"collectedThisMonth"`
	Pending            int64 `json:"pending"`
	FailedCount        int   `json:"failedCount"`
}

// Balance is one currency bucket of a Stripe balance.
type Balance struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// PayoutStatus mirrors the payment processor's account state for an owner.
type PayoutStatus struct {
	PayoutsStatus    string    `json:"payoutsStatus"`
	BalanceAvailable []Balance `json:"balanceAvailable"`
	BalancePending   []Balance `json:"balancePending"`
}
