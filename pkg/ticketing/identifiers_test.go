package ticketing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateComponentID_RoundTrip(t *testing.T) {
	id := CreateComponentID("support")
	require.Equal(t, "ticket.create.support", id)

	category, ok := ParseCreateComponentID(id)
	require.True(t, ok)
	require.Equal(t, "support", category)
}

func TestParseCreateComponentID_Rejects(t *testing.T) {
	for _, customID := range []string{
		ComponentClose,
		ComponentCloseConfirm,
		ComponentAddParticipant,
		ComponentTranscript,
		"ticket.create.",
		"something.else",
		"",
	} {
		_, ok := ParseCreateComponentID(customID)
		require.False(t, ok, customID)
	}
}
