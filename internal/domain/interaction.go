package domain

// Interaction is one user's rating of one item.
type Interaction struct {
	UserID int64   `json:"user_id"`
	ItemID int64   `json:"item_id"`
	Rating float64 `json:"rating"`
}
