package domain

// Item is a catalog entry. Genre may hold several values separated by "/".
type Item struct {
	ID          int64  `json:"item_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}
