package model

type PropertyType string

const (
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multiSelect"
	PropertyMultiPerson PropertyType = "multiPerson"
	PropertyDate        PropertyType = "date"
	PropertyURL         PropertyType = "url"
	PropertyCreatedTime PropertyType = "createdTime"
	PropertyCreatedBy   PropertyType = "createdBy"
	PropertyText        PropertyType = "text"
)

type Board struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// CardProperties is ordered; cards reference templates by id.
	CardProperties []PropertyTemplate `json:"cardProperties"`
}

type PropertyTemplate struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Type    PropertyType     `json:"type"`
	Options []PropertyOption `json:"options"`
}

type PropertyOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Color string `json:"color"`
}

// Template returns the card property template with the given name.
func (b *Board) Template(name string) (PropertyTemplate, bool) {
	for _, t := range b.CardProperties {
		if t.Name == name {
			return t, true
		}
	}
	return PropertyTemplate{}, false
}
