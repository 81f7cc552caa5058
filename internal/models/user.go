package models

// User is the session identity returned by the auth service.
type User struct {
	UserID    int64  `json:"userid"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phoneno"`
	RoleID    int64  `json:"roleid"`
}

// ViewState is the persisted slice of a user's bookings table state: the
// query inputs only. The raw list and the derived projection are never
// persisted; a fresh view always refetches and recomputes.
type ViewState struct {
	UserID  int64  `json:"user_id"`
	Search  string `json:"search"`
	Status  string `json:"status"`
	SortKey string `json:"sort_key"`
	SortAsc bool   `json:"sort_asc"`
	Page    int    `json:"page"`
}
