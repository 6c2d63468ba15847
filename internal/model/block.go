package model

import "encoding/json"

type BlockType string

const (
	BlockView     BlockType = "view"
	BlockCard     BlockType = "card"
	BlockText     BlockType = "text"
	BlockCheckbox BlockType = "checkbox"
	BlockComment  BlockType = "comment"
)

const ViewTypeBoard = "board"

// Block is the generic persisted unit. Kind specific data lives in Fields.
type Block struct {
	ID         string    `json:"id"`
	BoardID    string    `json:"boardId"`
	ParentID   string    `json:"parentId"`
	Type       BlockType `json:"type"`
	Title      string    `json:"title"`
	CreatedBy  string    `json:"createdBy"`
	ModifiedBy string    `json:"modifiedBy"`
	// Timestamps are epoch milliseconds; zero means unset.
	CreateAt int64  `json:"createAt"`
	UpdateAt int64  `json:"updateAt"`
	DeleteAt int64  `json:"deleteAt"`
	Fields   Fields `json:"fields"`
}

type Fields struct {
	ViewType     string     `json:"viewType,omitempty"`
	Properties   Properties `json:"properties,omitempty"`
	ContentOrder []string   `json:"contentOrder,omitempty"`
	// Value is only set on checkbox blocks.
	Value *bool `json:"value,omitempty"`
}

func NewCard() Block {
	return Block{Type: BlockCard, Fields: Fields{Properties: Properties{}, ContentOrder: []string{}}}
}

// MarshalJSON always writes properties and contentOrder on cards, even when
// empty. Other block types omit them.
func (b Block) MarshalJSON() ([]byte, error) {
	type plain Block
	if b.Type != BlockCard {
		return json.Marshal(plain(b))
	}
	type cardFields struct {
		Properties   Properties `json:"properties"`
		ContentOrder []string   `json:"contentOrder"`
	}
	fields := cardFields{Properties: b.Fields.Properties, ContentOrder: b.Fields.ContentOrder}
	if fields.Properties == nil {
		fields.Properties = Properties{}
	}
	if fields.ContentOrder == nil {
		fields.ContentOrder = []string{}
	}
	return json.Marshal(struct {
		plain
		Fields cardFields `json:"fields"`
	}{plain(b), fields})
}

func NewCheckbox(title string, checked bool) Block {
	return Block{Type: BlockCheckbox, Title: title, Fields: Fields{Value: &checked}}
}
