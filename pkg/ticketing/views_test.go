package ticketing

import (
	"fmt"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestPanelComponents_OneButtonPerCategory(t *testing.T) {
	cfg := entities.DefaultGuildConfig("g1")
	components := PanelComponents(cfg)

	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, cfg.Categories.Len())

	for i, id := range cfg.Categories.IDs() {
		button, ok := row.Components[i].(discordgo.Button)
		require.True(t, ok)
		require.Equal(t, CreateComponentID(id), button.CustomID)
	}
}

func TestPanelComponents_FiveButtonsPerRow(t *testing.T) {
	cfg := entities.DefaultGuildConfig("g1")
	cfg.Categories = entities.NewCategorySet()
	for i := 0; i < 12; i++ {
		require.NoError(t, cfg.Categories.Add(entities.Category{
			ID:   fmt.Sprintf("cat%d", i),
			Name: fmt.Sprintf("Category %d", i),
		}))
	}

	components := PanelComponents(cfg)
	require.Len(t, components, 3)
	require.Len(t, components[0].(discordgo.ActionsRow).Components, 5)
	require.Len(t, components[1].(discordgo.ActionsRow).Components, 5)
	require.Len(t, components[2].(discordgo.ActionsRow).Components, 2)
}

func TestControlComponents_TranscriptGated(t *testing.T) {
	cfg := entities.DefaultGuildConfig("g1")

	row := ControlComponents(cfg)[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 3)

	cfg.TranscriptEnabled = false
	row = ControlComponents(cfg)[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)
	for _, comp := range row.Components {
		require.NotEqual(t, ComponentTranscript, comp.(discordgo.Button).CustomID)
	}
}

func TestControlMessage_StaffPing(t *testing.T) {
	cfg := entities.DefaultGuildConfig("g1")
	cfg.StaffRoleIDs = []string{"r1", "r2"}

	category, ok := cfg.Categories.Get("support")
	require.True(t, ok)

	msg := ControlMessage(cfg, "u1", category)
	require.Contains(t, msg.Content, "<@u1>")
	require.Contains(t, msg.Content, "<@&r1>")
	require.Contains(t, msg.Content, "<@&r2>")

	// Feature requests do not ping staff.
	category, ok = cfg.Categories.Get("feature")
	require.True(t, ok)
	msg = ControlMessage(cfg, "u1", category)
	require.NotContains(t, msg.Content, "<@&")
}

func TestControlMessage_EmbedFallbacks(t *testing.T) {
	cfg := entities.DefaultGuildConfig("g1")
	category := entities.Category{ID: "bare", Name: "Bare"}

	msg := ControlMessage(cfg, "u1", &category)
	require.Equal(t, "Bare", msg.Embed.Title)
	require.Equal(t, entities.ColorBlue, msg.Embed.Color)
}
