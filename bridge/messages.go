package bridge

// Message types sent to connected viewers.
const (
	TypeSurface = "surface"
	TypeDamage  = "damage"
)

// Message is the envelope for all frames sent over a viewer connection.
type Message struct {
	Type string `json:"type"`

	// Surface fields, present when Type is "surface". An empty SurfaceID
	// means the backend currently has no resolvable surface.
	SurfaceID string `json:"surfaceId,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Stride    int    `json:"stride,omitempty"`
	Format    string `json:"format,omitempty"`

	// Damage fields, present when Type is "damage".
	X     int `json:"x,omitempty"`
	Y     int `json:"y,omitempty"`
	RectW int `json:"rectWidth,omitempty"`
	RectH int `json:"rectHeight,omitempty"`
}
