package domain

// Reserved group ids. Both groups always exist and are never destroyed.
const (
	InboxGroupID  = "inbox"
	HiddenGroupID = "hidden"
)

// Group is the persisted form of a container on the canvas.
type Group struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Width int      `json:"width"` // grid columns, >= 1
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Z     int      `json:"z"`
	Items []string `json:"items"` // arrangement, row-major grid order
}

// Camera is the persisted view state of a workspace.
type Camera struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}
