package ticketing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserIDs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain mention",
			content: "<@123456789>",
			want:    []string{"123456789"},
		},
		{
			name:    "nickname mention",
			content: "<@!123456789>",
			want:    []string{"123456789"},
		},
		{
			name:    "raw id",
			content: "123456789",
			want:    []string{"123456789"},
		},
		{
			name:    "mixed with noise",
			content: "please add <@111> and 222 thanks",
			want:    []string{"111", "222"},
		},
		{
			name:    "duplicates collapsed",
			content: "<@111> 111 <@!111> <@222>",
			want:    []string{"111", "222"},
		},
		{
			name:    "no users",
			content: "nobody here",
			want:    nil,
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "malformed mention ignored",
			content: "<@abc> <@> @123",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseUserIDs(tt.content))
		})
	}
}
