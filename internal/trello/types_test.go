package trello

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "minimal export",
			doc:  `{"name":"b","lists":[],"cards":[],"labels":[],"checklists":[],"actions":[]}`,
		},
		{
			name:    "missing cards",
			doc:     `{"name":"b","lists":[],"labels":[],"checklists":[],"actions":[]}`,
			wantErr: "Board.Cards",
		},
		{
			name:    "missing actions",
			doc:     `{"name":"b","lists":[],"cards":[],"labels":[],"checklists":[]}`,
			wantErr: "Board.Actions",
		},
		{
			name:    "list without id",
			doc:     `{"name":"b","lists":[{"name":"x"}],"cards":[],"labels":[],"checklists":[],"actions":[]}`,
			wantErr: "Board.Lists[0].ID",
		},
		{
			name:    "custom field without id",
			doc:     `{"name":"b","lists":[],"cards":[],"labels":[],"checklists":[],"actions":[],"customFields":[{"name":"x"}]}`,
			wantErr: "Board.CustomFields[0].ID",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Decode(strings.NewReader(tc.doc))
			require.NoError(t, err)
			err = Validate(b)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidExport)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"name":`))
	assert.ErrorIs(t, err, ErrInvalidExport)

	assert.ErrorIs(t, Validate(nil), ErrInvalidExport)
}

func TestReferencedMembers(t *testing.T) {
	b := &Board{
		Cards: []Card{
			{ID: "c1", IDMembers: []string{"m1", "m2"}},
			{ID: "c2", IDMembers: []string{"m2"}},
		},
		Actions: []Action{{IDMemberCreator: "m3"}, {IDMemberCreator: "m1"}, {}},
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, b.ReferencedMembers())
}
