package protocol

import (
	"encoding/json"
	"fmt"
)

// Action type tags as they appear on the wire.
const (
	ActionFocus       = "focus"
	ActionPress       = "press"
	ActionIncrement   = "increment"
	ActionDecrement   = "decrement"
	ActionSetValue    = "set_value"
	ActionScroll      = "scroll"
	ActionContextMenu = "context_menu"
	ActionCustom      = "custom"
)

// Action is an operation that can be invoked on a node, tagged on the wire
// by its type field. Value is used by set_value, X/Y by scroll, and Name by
// custom; the other fields are zero.
type Action struct {
	Type  string
	Value string
	X, Y  float64
	Name  string
}

// SetValue builds a set_value action.
func SetValue(value string) Action {
	return Action{Type: ActionSetValue, Value: value}
}

// Scroll builds a scroll action with the given deltas.
func Scroll(x, y float64) Action {
	return Action{Type: ActionScroll, X: x, Y: y}
}

// Custom builds a platform-specific custom action.
func Custom(name string) Action {
	return Action{Type: ActionCustom, Name: name}
}

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Type {
	case ActionFocus, ActionPress, ActionIncrement, ActionDecrement, ActionContextMenu:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{a.Type})
	case ActionSetValue:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{a.Type, a.Value})
	case ActionScroll:
		return json.Marshal(struct {
			Type string  `json:"type"`
			X    float64 `json:"x"`
			Y    float64 `json:"y"`
		}{a.Type, a.X, a.Y})
	case ActionCustom:
		return json.Marshal(struct {
			Type string `json:"type"`
			Name string `json:"name"`
		}{a.Type, a.Name})
	}
	return nil, fmt.Errorf("action: unknown type %q", a.Type)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string  `json:"type"`
		Value string  `json:"value"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Name  string  `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	switch raw.Type {
	case ActionFocus, ActionPress, ActionIncrement, ActionDecrement, ActionContextMenu:
		*a = Action{Type: raw.Type}
	case ActionSetValue:
		*a = Action{Type: raw.Type, Value: raw.Value}
	case ActionScroll:
		*a = Action{Type: raw.Type, X: raw.X, Y: raw.Y}
	case ActionCustom:
		*a = Action{Type: raw.Type, Name: raw.Name}
	default:
		return fmt.Errorf("action: unknown type %q", raw.Type)
	}
	return nil
}

// String renders the action for log output.
func (a Action) String() string {
	switch a.Type {
	case ActionSetValue:
		return fmt.Sprintf("set_value(%q)", a.Value)
	case ActionScroll:
		return fmt.Sprintf("scroll(%g, %g)", a.X, a.Y)
	case ActionCustom:
		return fmt.Sprintf("custom(%q)", a.Name)
	}
	return a.Type
}
