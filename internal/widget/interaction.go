package widget

// Interaction is the outcome of one simulated user action, as recorded by
// the event simulator that produced the snapshot.
type Interaction struct {
	Action    string `json:"action" yaml:"action"`
	WidgetID  string `json:"widget_id" yaml:"widget_id"`
	Success   bool   `json:"success" yaml:"success"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}
