package connection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMongoDB_ConnectRequiresConnectionString(t *testing.T) {
	m := new(MongoDB)

	client, err := m.Connect()
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "no mongo connection string")
}
