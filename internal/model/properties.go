package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PropertyValue holds either a single string or a list of strings.
type PropertyValue struct {
	text string
	list []string
	many bool
}

func TextValue(s string) PropertyValue { return PropertyValue{text: s} }

func ListValue(items ...string) PropertyValue {
	return PropertyValue{list: append([]string{}, items...), many: true}
}

func (v PropertyValue) IsList() bool { return v.many }

func (v PropertyValue) Text() string { return v.text }

func (v PropertyValue) List() []string { return v.list }

func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if v.many {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.text)
}

func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = ListValue(list...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("property value: %w", err)
	}
	*v = TextValue(s)
	return nil
}

// Properties maps a property template id to the card's value for it.
type Properties map[string]PropertyValue

// Set replaces the value for templateID with a single string.
func (p Properties) Set(templateID, value string) {
	p[templateID] = TextValue(value)
}

// Append adds value to the list stored under templateID, creating the list
// on first use. A single string stored earlier is replaced.
func (p Properties) Append(templateID, value string) {
	cur, ok := p[templateID]
	if !ok || !cur.many {
		p[templateID] = ListValue(value)
		return
	}
	cur.list = append(cur.list, value)
	p[templateID] = cur
}

func (p Properties) Get(templateID string) (PropertyValue, bool) {
	v, ok := p[templateID]
	return v, ok
}
