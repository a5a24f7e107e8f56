package dataaccess

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMergeDocs_StoredScalarWins(t *testing.T) {
	defaults := bson.D{
		{Key: "enabled", Value: true},
		{Key: "max_tickets", Value: int32(3)},
	}
	stored := bson.D{
		{Key: "max_tickets", Value: int32(5)},
	}

	got := MergeDocs(defaults, stored)
	require.Equal(t, bson.D{
		{Key: "enabled", Value: true},
		{Key: "max_tickets", Value: int32(5)},
	}, got)
}

func TestMergeDocs_DefaultOnlyKeysSurvive(t *testing.T) {
	defaults := bson.D{
		{Key: "enabled", Value: true},
		{Key: "log_channel_id", Value: ""},
	}
	stored := bson.D{}

	got := MergeDocs(defaults, stored)
	require.Equal(t, defaults, got)
}

func TestMergeDocs_NestedDocsRecurse(t *testing.T) {
	defaults := bson.D{
		{Key: "messages", Value: bson.D{
			{Key: "panel_title", Value: "Support"},
			{Key: "ticket_closed", Value: "Closed"},
		}},
	}
	stored := bson.D{
		{Key: "messages", Value: bson.D{
			{Key: "panel_title", Value: "Help Desk"},
		}},
	}

	got := MergeDocs(defaults, stored)
	require.Equal(t, bson.D{
		{Key: "messages", Value: bson.D{
			{Key: "panel_title", Value: "Help Desk"},
			{Key: "ticket_closed", Value: "Closed"},
		}},
	}, got)
}

func TestMergeDocs_StoredOnlyKeysAppended(t *testing.T) {
	defaults := bson.D{
		{Key: "enabled", Value: true},
	}
	stored := bson.D{
		{Key: "legacy_field", Value: "kept"},
	}

	got := MergeDocs(defaults, stored)
	require.Equal(t, bson.D{
		{Key: "enabled", Value: true},
		{Key: "legacy_field", Value: "kept"},
	}, got)
}

func TestMergeDocs_ScalarOverDocKeepsStored(t *testing.T) {
	// A stored scalar where the defaults hold a document wins outright.
	defaults := bson.D{
		{Key: "messages", Value: bson.D{{Key: "panel_title", Value: "Support"}}},
	}
	stored := bson.D{
		{Key: "messages", Value: "broken"},
	}

	got := MergeDocs(defaults, stored)
	require.Equal(t, bson.D{{Key: "messages", Value: "broken"}}, got)
}

func TestMergeDocs_BsonMNormalised(t *testing.T) {
	defaults := bson.D{
		{Key: "messages", Value: bson.D{
			{Key: "panel_title", Value: "Support"},
			{Key: "ticket_closed", Value: "Closed"},
		}},
	}
	stored := bson.D{
		{Key: "messages", Value: bson.M{"panel_title": "Help Desk"}},
	}

	got := MergeDocs(defaults, stored)
	require.Equal(t, bson.D{
		{Key: "messages", Value: bson.D{
			{Key: "panel_title", Value: "Help Desk"},
			{Key: "ticket_closed", Value: "Closed"},
		}},
	}, got)
}
