package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// FlexBool is a bool that also accepts the JSON strings "true"/"false"
// (any case) and "1"/"0". Clients of the original voice front end send
// both forms.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*b = FlexBool(val)
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			*b = true
		case "false", "0", "no", "":
			*b = false
		default:
			return fmt.Errorf("invalid bool value %q", val)
		}
	case nil:
		*b = false
	default:
		return fmt.Errorf("invalid bool value of type %T", v)
	}
	return nil
}

// FlexInt is an int that also accepts JSON numbers and numeric strings.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*i = FlexInt(int(val))
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			*i = 0
			return nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return fmt.Errorf("invalid int value %q", val)
		}
		*i = FlexInt(n)
	case nil:
		*i = 0
	default:
		return fmt.Errorf("invalid int value of type %T", v)
	}
	return nil
}

// messageResponse is the generic {"msg": ...} JSON body.
type messageResponse struct {
	Msg string `json:"msg"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a {"msg": ...} error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Msg: msg})
}

// decodeJSONBody decodes the request body into dst, rejecting unknown
// syntax errors with a client-friendly message.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
