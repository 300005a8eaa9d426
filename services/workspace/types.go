package workspace

// Scene object kinds the VR client knows how to render
const (
	ObjectBox        = "box"
	ObjectCylinder   = "cylinder"
	ObjectStickyNote = "sticky_note"
	ObjectScreen     = "screen"
)

// App modes understood by the process-request prompt
const (
	ModeMail      = "MAIL"
	ModeDocs      = "DOCS"
	ModeDashboard = "DASHBOARD"
)

// LayoutRequest asks for a generated workshop layout
type LayoutRequest struct {
	Topic     string `json:"topic" validate:"required,max=500"`
	ModelName string `json:"model_name,omitempty" validate:"omitempty,max=100"`
}

// AppRequest is a free-form request issued from an in-world app
type AppRequest struct {
	Mode      string `json:"mode" validate:"required,max=50"`
	Input     string `json:"input" validate:"required,max=10000"`
	ModelName string `json:"model_name,omitempty" validate:"omitempty,max=100"`
}

// AppResponse carries the model's answer to an AppRequest
type AppResponse struct {
	Text string `json:"text"`
}

// Vector3 is a position or rotation in scene space
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Size describes box extents (w, h, d) or a cylinder radius (r)
type Size struct {
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`
	D float64 `json:"d,omitempty"`
	R float64 `json:"r,omitempty"`
}

// SceneObject is a single element of a generated layout
type SceneObject struct {
	Type    string   `json:"type"`
	Title   string   `json:"title,omitempty"`
	Color   string   `json:"color,omitempty"`
	Pos     *Vector3 `json:"pos"`
	Size    *Size    `json:"size,omitempty"`
	Rot     *Vector3 `json:"rot,omitempty"`
	Content string   `json:"content,omitempty"`
}

// valid reports whether the object carries the fields the client requires
func (o SceneObject) valid() bool {
	return o.Type != "" && o.Pos != nil
}
