package domain

// CategoryNode is one node of the category tree. Children keep their order.
type CategoryNode struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children,omitempty"`
}

// NewCategory is the payload for creating a category. A zero ParentID creates
// a root node.
type NewCategory struct {
	Name     string `json:"name"`
	ParentID int64  `json:"parentId,omitempty"`
}
