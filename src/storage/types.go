package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skela-dev/skela/src/aisdk"
)

// SessionState is the durable per-session conversation state. One instance
// per conversation, created on first contact, mutated once per completed
// turn by a single serialized writer.
type SessionState struct {
	SessionID string      `db:"id"`
	Messages  MessageList `db:"messages"`
	Config    ConfigMap   `db:"config"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

// ConfigSuggestedTemplateKey is the session config key holding the template
// slug the model last suggested.
const ConfigSuggestedTemplateKey = "suggestedTemplateSlug"

// SuggestedTemplateSlug returns the suggested template slug, if any.
func (s *SessionState) SuggestedTemplateSlug() string {
	return s.Config[ConfigSuggestedTemplateKey]
}

// MessageList stores the ordered conversation log as a JSON column.
type MessageList []aisdk.Message

// Scan implements the sql.Scanner interface for MessageList.
func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = MessageList{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*m = MessageList{}
			return nil
		}
		return json.Unmarshal([]byte(v), m)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*m = MessageList{}
			return nil
		}
		return json.Unmarshal(v, m)
	default:
		return fmt.Errorf("cannot scan type %T into MessageList", value)
	}
}

// Value implements the driver.Valuer interface for MessageList.
func (m MessageList) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ConfigMap stores the open string-keyed session configuration as a JSON column.
type ConfigMap map[string]string

// Scan implements the sql.Scanner interface for ConfigMap.
func (c *ConfigMap) Scan(value interface{}) error {
	if value == nil {
		*c = ConfigMap{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "{}" {
			*c = ConfigMap{}
			return nil
		}
		return json.Unmarshal([]byte(v), c)
	case []byte:
		if len(v) == 0 || string(v) == "{}" {
			*c = ConfigMap{}
			return nil
		}
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("cannot scan type %T into ConfigMap", value)
	}
}

// Value implements the driver.Valuer interface for ConfigMap.
func (c ConfigMap) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ParamsMap stores tool parameters as a JSON column.
type ParamsMap map[string]interface{}

// Scan implements the sql.Scanner interface for ParamsMap.
func (p *ParamsMap) Scan(value interface{}) error {
	if value == nil {
		*p = ParamsMap{}
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "{}" {
			*p = ParamsMap{}
			return nil
		}
		return json.Unmarshal([]byte(v), p)
	case []byte:
		if len(v) == 0 || string(v) == "{}" {
			*p = ParamsMap{}
			return nil
		}
		return json.Unmarshal(v, p)
	default:
		return fmt.Errorf("cannot scan type %T into ParamsMap", value)
	}
}

// Value implements the driver.Valuer interface for ParamsMap.
func (p ParamsMap) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
