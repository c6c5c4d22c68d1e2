package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrUnknownAction = errors.New("unknown action")
	ErrBadRequest    = errors.New("bad request")
)

const (
	ActionAdd      = "add"
	ActionEdit     = "edit"
	ActionDelete   = "delete"
	ActionToggle   = "toggle"
	ActionComplete = "complete"
	ActionReorder  = "reorder"
)

// ActionLabel maps an action to a bounded label set: known actions keep
// their name, anything else a client sends becomes "unknown".
func ActionLabel(action string) string {
	switch action {
	case "":
		return "none"
	case ActionAdd, ActionEdit, ActionDelete, ActionToggle, ActionComplete, ActionReorder:
		return action
	default:
		return "unknown"
	}
}

// Request is one POST to the task endpoint: the action tag plus the raw
// object it came in, which each action decodes its own fields from.
type Request struct {
	Action string
	Body   json.RawMessage
}

type envelope struct {
	Action *string `json:"action" validate:"required"`
}

// DecodeRequest reads a JSON object carrying an "action" field. The action
// is matched exactly, so "ADD" is an unknown action.
func DecodeRequest(r io.Reader) (Request, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	var env envelope
	if err := decodePayload(b, &env); err != nil {
		return Request{}, err
	}
	return Request{
		Action: *env.Action,
		Body:   b,
	}, nil
}

// NewRequest builds a Request from an action and its fields, as a client would send it.
func NewRequest(action string, fields map[string]any) (Request, error) {
	body := map[string]any{"action": action}
	for k, v := range fields {
		body[k] = v
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Request{}, err
	}
	return Request{Action: action, Body: b}, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodePayload unmarshals b into out and checks that every field tagged
// `validate:"required"` was present. Pointer fields make presence and
// emptiness distinct: "" is present, a missing key is not.
func decodePayload(b []byte, out any) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: bad json: %v", ErrBadRequest, err)
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			names := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				names = append(names, fe.Field())
			}
			return fmt.Errorf("%w: missing field: %s", ErrBadRequest, strings.Join(names, ", "))
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
