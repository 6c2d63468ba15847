package trello

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"trelloimport/internal/model"
)

// Names of the card properties created on every imported board.
const (
	PropertyList      = "List"
	PropertyLabel     = "Label"
	PropertyAssignee  = "Assignee"
	PropertyDue       = "Due"
	PropertyURL       = "Trello URL"
	PropertyCreatedAt = "Created At"
	PropertyCreatedBy = "Created By"

	BoardViewTitle = "Board View"

	// MissingFieldValue is stored for custom field items without text.
	MissingFieldValue = "not found"
)

var optionColors = []string{
	"propColorGray",
	"propColorBrown",
	"propColorOrange",
	"propColorYellow",
	"propColorGreen",
	"propColorBlue",
	"propColorPurple",
	"propColorPink",
	"propColorRed",
}

// Converter turns Trello exports into boards and blocks. It holds no per-run
// state and may be shared between goroutines if newID is concurrency safe.
type Converter struct {
	newID func() string
	log   *slog.Logger
}

func NewConverter(newID func() string, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	return &Converter{newID: newID, log: log}
}

// Convert builds one board and its blocks from in. memberIDs maps Trello
// member ids to internal user ids. Unresolvable references are reported to
// sink (a LogSink when nil) and left out; Convert never fails on them.
func (c *Converter) Convert(in *Board, memberIDs map[string]string, sink Sink) ([]model.Board, []model.Block) {
	if sink == nil {
		sink = LogSink{Log: c.log}
	}
	run := &conversion{
		Converter:      c,
		in:             in,
		members:        memberIDs,
		sink:           sink,
		listOptions:    map[string]string{},
		labelOptions:   map[string]string{},
		fieldTemplates: map[string]string{},
		cardIDs:        map[string]string{},
		checklists:     map[string]*Checklist{},
		created:        map[string]Action{},
	}
	run.buildBoard()
	run.addBoardView()
	run.addCards()
	run.addComments()

	c.log.Info("converted trello board", "board", in.Name, "cards", len(in.Cards), "imported_cards", len(run.cardIDs), "blocks", len(run.blocks))
	return []model.Board{run.board}, run.blocks
}

// conversion is the state of a single Convert call.
type conversion struct {
	*Converter
	in      *Board
	members map[string]string
	sink    Sink

	colorIndex int

	board  model.Board
	blocks []model.Block

	listOptions    map[string]string // trello list id -> option id
	labelOptions   map[string]string // trello label id -> option id
	fieldTemplates map[string]string // trello custom field id -> template id
	cardIDs        map[string]string // trello card id -> card block id
	checklists     map[string]*Checklist
	created        map[string]Action // first createCard action per card

	listProp, labelProp, assigneeProp, dueProp, urlProp string
}

func (r *conversion) nextColor() string {
	color := optionColors[r.colorIndex%len(optionColors)]
	r.colorIndex++
	return color
}

func (r *conversion) buildBoard() {
	r.board = model.Board{
		ID:          r.newID(),
		Title:       r.in.Name,
		Description: r.in.Desc,
	}
	r.log.Debug("board", "name", r.in.Name)

	listOptions := []model.PropertyOption{}
	for _, list := range r.in.Lists {
		// archived lists carry stale positions
		if list.Closed {
			continue
		}
		id := r.newID()
		r.listOptions[list.ID] = id
		listOptions = append(listOptions, model.PropertyOption{ID: id, Value: list.Name, Color: r.nextColor()})
	}

	labelOptions := []model.PropertyOption{}
	for _, label := range r.in.Labels {
		id := r.newID()
		r.labelOptions[label.ID] = id
		labelOptions = append(labelOptions, model.PropertyOption{ID: id, Value: label.Name, Color: r.nextColor()})
	}

	template := func(name string, typ model.PropertyType, options []model.PropertyOption) model.PropertyTemplate {
		if options == nil {
			options = []model.PropertyOption{}
		}
		return model.PropertyTemplate{ID: r.newID(), Name: name, Type: typ, Options: options}
	}
	list := template(PropertyList, model.PropertySelect, listOptions)
	label := template(PropertyLabel, model.PropertyMultiSelect, labelOptions)
	assignee := template(PropertyAssignee, model.PropertyMultiPerson, nil)
	due := template(PropertyDue, model.PropertyDate, nil)
	url := template(PropertyURL, model.PropertyURL, nil)
	createdAt := template(PropertyCreatedAt, model.PropertyCreatedTime, nil)
	createdBy := template(PropertyCreatedBy, model.PropertyCreatedBy, nil)
	r.listProp, r.labelProp, r.assigneeProp, r.dueProp, r.urlProp = list.ID, label.ID, assignee.ID, due.ID, url.ID

	r.board.CardProperties = []model.PropertyTemplate{createdAt, createdBy, list, label, assignee, due, url}
	for _, field := range r.in.CustomFields {
		t := template(field.Name, model.PropertyText, nil)
		r.fieldTemplates[field.ID] = t.ID
		r.board.CardProperties = append(r.board.CardProperties, t)
	}
}

func (r *conversion) addBoardView() {
	r.blocks = append(r.blocks, model.Block{
		ID:       r.newID(),
		BoardID:  r.board.ID,
		ParentID: r.board.ID,
		Type:     model.BlockView,
		Title:    BoardViewTitle,
		Fields:   model.Fields{ViewType: model.ViewTypeBoard},
	})
}

func (r *conversion) addCards() {
	for i := range r.in.Checklists {
		// first checklist wins on duplicate ids
		if _, ok := r.checklists[r.in.Checklists[i].ID]; ok {
			continue
		}
		r.checklists[r.in.Checklists[i].ID] = &r.in.Checklists[i]
	}
	for _, a := range r.in.Actions {
		if a.Type != ActionCreateCard {
			continue
		}
		if _, ok := r.created[a.Data.Card.ID]; !ok {
			r.created[a.Data.Card.ID] = a
		}
	}

	for i := range r.in.Cards {
		card := &r.in.Cards[i]
		if card.Closed {
			continue
		}
		r.addCard(card)
	}
}

func (r *conversion) warn(kind WarningKind, card *Card, ref, format string, args ...any) {
	w := Warning{Kind: kind, Ref: ref, Message: fmt.Sprintf(format, args...)}
	if card != nil {
		w.CardID, w.CardName = card.ID, card.Name
	}
	r.sink.Warn(w)
}

func (r *conversion) addCard(card *Card) {
	if card.IDList == "" {
		r.warn(WarnMissingList, card, "", "missing idList for card %q", card.Name)
		return
	}
	listOption, ok := r.listOptions[card.IDList]
	if !ok {
		r.warn(WarnUnknownList, card, card.IDList, "invalid idList %s for card %q", card.IDList, card.Name)
		return
	}

	out := model.NewCard()
	out.ID = r.newID()
	out.BoardID = r.board.ID
	out.ParentID = r.board.ID
	out.Title = card.Name
	out.Fields.Properties.Set(r.listProp, listOption)
	r.cardIDs[card.ID] = out.ID

	var children []model.Block
	if card.Desc != "" {
		text := model.Block{
			ID:       r.newID(),
			BoardID:  r.board.ID,
			ParentID: out.ID,
			Type:     model.BlockText,
			Title:    card.Desc,
		}
		children = append(children, text)
		out.Fields.ContentOrder = []string{text.ID}
	}

	if a, ok := r.created[card.ID]; ok {
		if ms, err := parseMillis(a.Date); err == nil {
			out.CreateAt = ms
		} else {
			r.warn(WarnBadDate, card, a.Date, "invalid createCard date %q for card %q", a.Date, card.Name)
		}
		out.CreatedBy = r.members[a.IDMemberCreator]
	}

	if card.ShortURL != "" {
		out.Fields.Properties.Set(r.urlProp, card.ShortURL)
	}

	for _, label := range card.Labels {
		optionID, ok := r.labelOptions[label.ID]
		if !ok {
			r.warn(WarnUnknownLabel, card, label.ID, "unknown label %s for card %q", label.ID, card.Name)
			continue
		}
		out.Fields.Properties.Append(r.labelProp, optionID)
	}

	if card.Due != "" {
		if due, err := dueValue(card.Due); err == nil {
			out.Fields.Properties.Set(r.dueProp, due)
		} else {
			r.warn(WarnBadDate, card, card.Due, "invalid due date %q for card %q", card.Due, card.Name)
		}
	}

	for _, memberID := range card.IDMembers {
		userID, ok := r.members[memberID]
		if !ok || userID == "" {
			r.warn(WarnUnknownMember, card, memberID, "member %s not found for card %q", memberID, card.Name)
			continue
		}
		out.Fields.Properties.Append(r.assigneeProp, userID)
	}

	for _, checklistID := range card.IDChecklists {
		checklist, ok := r.checklists[checklistID]
		if !ok {
			r.warn(WarnUnknownChecklist, card, checklistID, "checklist %s not found for card %q", checklistID, card.Name)
			continue
		}
		for _, item := range checklist.CheckItems {
			box := model.NewCheckbox(item.Name, item.State == CheckItemComplete)
			box.ID = r.newID()
			box.BoardID = r.board.ID
			box.ParentID = out.ID
			children = append(children, box)
			out.Fields.ContentOrder = append(out.Fields.ContentOrder, box.ID)
		}
	}

	for _, item := range card.CustomFieldItems {
		templateID, ok := r.fieldTemplates[item.IDCustomField]
		if !ok {
			r.warn(WarnUnknownField, card, item.IDCustomField, "custom field %s not found for card %q", item.IDCustomField, card.Name)
			continue
		}
		value := item.Value.Text
		if value == "" {
			value = MissingFieldValue
		}
		out.Fields.Properties.Set(templateID, value)
	}

	r.blocks = append(r.blocks, out)
	r.blocks = append(r.blocks, children...)
}

func (r *conversion) addComments() {
	for _, a := range r.in.Actions {
		if a.Type != ActionCommentCard {
			continue
		}
		cardID, ok := r.cardIDs[a.Data.Card.ID]
		if !ok {
			continue
		}
		userID := r.members[a.IDMemberCreator]
		if userID == "" || a.Data.Text == "" {
			continue
		}
		ms, err := parseMillis(a.Date)
		if err != nil {
			r.log.Debug("skipping comment with invalid date", "card_id", a.Data.Card.ID, "date", a.Date)
			continue
		}
		r.blocks = append(r.blocks, model.Block{
			ID:         r.newID(),
			BoardID:    r.board.ID,
			ParentID:   cardID,
			Type:       model.BlockComment,
			Title:      a.Data.Text,
			CreatedBy:  userID,
			ModifiedBy: userID,
			CreateAt:   ms,
			UpdateAt:   ms,
			DeleteAt:   0,
		})
	}
}

func parseMillis(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// dueValue encodes a due date the way date properties store it: a JSON
// object serialized into the property string.
func dueValue(due string) (string, error) {
	ms, err := parseMillis(due)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(struct {
		To int64 `json:"to"`
	}{To: ms})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
