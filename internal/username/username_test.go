package username

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		fullName string
		want     string
	}{
		{name: "placeholder replaced", username: "user8832", fullName: "Jane Q. Public", want: "jane-q-public"},
		{name: "real username kept", username: "jane.public", fullName: "Jane Q. Public", want: "jane.public"},
		{name: "accents folded", username: "user1", fullName: "José Ñúñez", want: "jose-nunez"},
		{name: "special letters", username: "user2", fullName: "Søren Strauß", want: "soren-strauss"},
		{name: "empty slug keeps placeholder", username: "user3", fullName: "山田 太郎", want: "user3"},
		{name: "empty full name", username: "user4", fullName: "", want: "user4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MakeUsername(tc.username, tc.fullName))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "a-b-c", Slugify("  A -- b__C!! "))
	assert.Equal(t, "release-2024", Slugify("Release 2024"))
	assert.Equal(t, Slugify("Zoë O'Brien"), Slugify("Zoë O'Brien"), "must be deterministic")
	assert.Equal(t, "zoe-o-brien", Slugify("Zoë O'Brien"))
}
