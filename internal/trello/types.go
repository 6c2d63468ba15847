// Package trello reads Trello board exports and converts them into boards and
// blocks.
package trello

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidExport is wrapped by every decode or shape validation failure.
var ErrInvalidExport = errors.New("invalid trello export")

const (
	ActionCreateCard  = "createCard"
	ActionCommentCard = "commentCard"

	CheckItemComplete = "complete"
)

// Board is the root of a Trello board export.
type Board struct {
	Name         string        `json:"name"`
	Desc         string        `json:"desc"`
	Lists        []List        `json:"lists" validate:"required,dive"`
	Cards        []Card        `json:"cards" validate:"required,dive"`
	Labels       []Label       `json:"labels" validate:"required,dive"`
	Checklists   []Checklist   `json:"checklists" validate:"required,dive"`
	CustomFields []CustomField `json:"customFields" validate:"omitempty,dive"`
	Actions      []Action      `json:"actions" validate:"required"`
	Members      []Member      `json:"members" validate:"omitempty,dive"`
}

type List struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

type Card struct {
	ID               string            `json:"id" validate:"required"`
	Name             string            `json:"name"`
	Desc             string            `json:"desc"`
	Due              string            `json:"due"`
	IDList           string            `json:"idList"`
	IDMembers        []string          `json:"idMembers"`
	IDChecklists     []string          `json:"idChecklists"`
	Labels           []Label           `json:"labels"`
	CustomFieldItems []CustomFieldItem `json:"customFieldItems"`
	ShortURL         string            `json:"shortUrl"`
	Closed           bool              `json:"closed"`
}

type Label struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type Checklist struct {
	ID         string      `json:"id" validate:"required"`
	Name       string      `json:"name"`
	CheckItems []CheckItem `json:"checkItems"`
}

type CheckItem struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type CustomField struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type CustomFieldItem struct {
	IDCustomField string           `json:"idCustomField"`
	Value         CustomFieldValue `json:"value"`
}

type CustomFieldValue struct {
	Text string `json:"text"`
}

type Action struct {
	Type            string     `json:"type"`
	Date            string     `json:"date"`
	IDMemberCreator string     `json:"idMemberCreator"`
	Data            ActionData `json:"data"`
}

type ActionData struct {
	Card ActionCard `json:"card"`
	Text string     `json:"text"`
}

type ActionCard struct {
	ID string `json:"id"`
}

type Member struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads a board export from r. It does not validate the shape.
func Decode(r io.Reader) (*Board, error) {
	var b Board
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	return &b, nil
}

// Validate checks that the export carries the top-level collections and ids
// the converter relies on.
func Validate(b *Board) error {
	if b == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidExport)
	}
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidExport, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	return nil
}

// ReferencedMembers returns the member ids used by cards and actions, in
// first-seen order.
func (b *Board) ReferencedMembers() []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, c := range b.Cards {
		for _, id := range c.IDMembers {
			add(id)
		}
	}
	for _, a := range b.Actions {
		add(a.IDMemberCreator)
	}
	return out
}
