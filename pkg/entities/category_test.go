package entities

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCategorySet_AddRejectsDuplicate(t *testing.T) {
	s := NewCategorySet(Category{ID: "support", Name: "Support"})

	err := s.Add(Category{ID: "support", Name: "Support Two"})
	require.ErrorIs(t, err, ErrDuplicateCategory)

	// The failed add must not have touched the set.
	require.Equal(t, 1, s.Len())
	got, ok := s.Get("support")
	require.True(t, ok)
	require.Equal(t, "Support", got.Name)
}

func TestCategorySet_AddRejectsOverLimit(t *testing.T) {
	s := CategorySet{}
	for i := 0; i < MaxCategories; i++ {
		require.NoError(t, s.Add(Category{ID: fmt.Sprintf("cat-%d", i)}))
	}

	err := s.Add(Category{ID: "one-too-many"})
	require.ErrorIs(t, err, ErrCategoryLimit)
	require.Equal(t, MaxCategories, s.Len())
	_, ok := s.Get("one-too-many")
	require.False(t, ok)
}

func TestCategorySet_UpdateKeepsPosition(t *testing.T) {
	s := NewCategorySet(
		Category{ID: "a", Name: "A"},
		Category{ID: "b", Name: "B"},
		Category{ID: "c", Name: "C"},
	)

	require.NoError(t, s.Update("b", Category{Name: "B renamed"}))
	require.Equal(t, []string{"a", "b", "c"}, s.IDs())

	got, ok := s.Get("b")
	require.True(t, ok)
	require.Equal(t, "B renamed", got.Name)

	require.ErrorIs(t, s.Update("missing", Category{}), ErrCategoryNotFound)
}

func TestCategorySet_Remove(t *testing.T) {
	s := NewCategorySet(
		Category{ID: "a"},
		Category{ID: "b"},
		Category{ID: "c"},
	)

	require.True(t, s.Remove("b"))
	require.Equal(t, []string{"a", "c"}, s.IDs())
	require.False(t, s.Remove("b"))
}

func TestCategorySet_ByLabel(t *testing.T) {
	s := NewCategorySet(
		Category{ID: "a", Name: "Support"},
		Category{ID: "b", Name: "Bugs"},
	)

	got, ok := s.ByLabel("Bugs")
	require.True(t, ok)
	require.Equal(t, "b", got.ID)

	_, ok = s.ByLabel("Nope")
	require.False(t, ok)

	require.Equal(t, "a", s.First().ID)
}

func TestCategorySet_JSONRoundTripKeepsOrder(t *testing.T) {
	s := NewCategorySet(
		Category{ID: "zeta", Name: "Zeta"},
		Category{ID: "alpha", Name: "Alpha"},
		Category{ID: "mid", Name: "Mid", StaffPing: true},
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got CategorySet
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, []string{"zeta", "alpha", "mid"}, got.IDs())
	require.Equal(t, s.All(), got.All())
}

func TestCategorySet_BSONRoundTripKeepsOrder(t *testing.T) {
	type doc struct {
		Categories CategorySet `bson:"categories"`
	}

	in := doc{Categories: NewCategorySet(
		Category{ID: "zeta", Name: "Zeta", Embed: CategoryEmbed{Title: "Z", Color: ColorRed}},
		Category{ID: "alpha", Name: "Alpha", DestinationCategoryID: "123"},
	)}

	data, err := bson.Marshal(in)
	require.NoError(t, err)

	var got doc
	require.NoError(t, bson.Unmarshal(data, &got))

	require.Equal(t, []string{"zeta", "alpha"}, got.Categories.IDs())
	require.Equal(t, in.Categories.All(), got.Categories.All())
}

func TestDefaultGuildConfig(t *testing.T) {
	cfg := DefaultGuildConfig("guild-1")

	require.Equal(t, "guild-1", cfg.ID)
	require.True(t, cfg.Enabled)
	require.Equal(t, 3, cfg.MaxTicketsPerUser)
	require.Equal(t, []string{"support", "bug", "feature"}, cfg.Categories.IDs())

	// Every message key resolves to something sendable.
	for key := range defaultMessages() {
		require.NotEmpty(t, cfg.Message(key))
	}
}

func TestGuildConfig_MessageFallsBack(t *testing.T) {
	cfg := DefaultGuildConfig("guild-1")
	cfg.Messages = map[string]string{MsgPanelTitle: "Custom Title"}

	require.Equal(t, "Custom Title", cfg.Message(MsgPanelTitle))
	require.Equal(t, defaultMessages()[MsgNotATicket], cfg.Message(MsgNotATicket))
}

func TestGuildConfig_HasStaffRole(t *testing.T) {
	cfg := &GuildConfig{StaffRoleIDs: []string{"r1", "r2"}}

	require.True(t, cfg.HasStaffRole([]string{"r9", "r2"}))
	require.False(t, cfg.HasStaffRole([]string{"r9"}))
	require.False(t, cfg.HasStaffRole(nil))
}

func TestChannelName(t *testing.T) {
	require.Equal(t, "ticket-some-user-support", ChannelName("Some User", "support"))
}
