package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(endpoint string) *Client {
	return NewClient(Config{
		Endpoint: endpoint,
		Database: "odoo_db_thiop",
		UserID:   2,
		APIKey:   "secret",
	})
}

func TestCall_EnvelopeShape(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"jsonrpc":"2.0","result":[{"id":1}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Call(context.Background(), "pos.order", "search_read", []interface{}{}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(result))

	assert.Equal(t, "2.0", captured["jsonrpc"])
	assert.Equal(t, "call", captured["method"])

	params := captured["params"].(map[string]interface{})
	assert.Equal(t, "object", params["service"])
	assert.Equal(t, "execute_kw", params["method"])

	args := params["args"].([]interface{})
	require.Len(t, args, 7)
	assert.Equal(t, "odoo_db_thiop", args[0])
	assert.Equal(t, float64(2), args[1])
	assert.Equal(t, "secret", args[2])
	assert.Equal(t, "pos.order", args[3])
	assert.Equal(t, "search_read", args[4])
}

func TestCall_RequestIDsAreMonotonic(t *testing.T) {
	var ids []float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		ids = append(ids, body["id"].(float64))
		w.Write([]byte(`{"result":null}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	for i := 0; i < 3; i++ {
		_, err := client.Call(context.Background(), "res.users", "read", nil, nil)
		require.NoError(t, err)
	}

	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])
}

func TestCall_ErrorShapedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"message":"Odoo Server Error","data":{"message":"Access Denied"}}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Call(context.Background(), "res.users", "read", nil, nil)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "Access Denied", remoteErr.Message)
}

func TestCall_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client := testClient(server.URL)
	_, err := client.Call(context.Background(), "res.users", "read", nil, nil)
	assert.Error(t, err)
}

func TestVerifyAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[{"id":2,"name":"Admin","login":"admin"}]}`))
	}))
	defer server.Close()

	user, err := testClient(server.URL).VerifyAPIKey(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 2, user.ID)
	assert.Equal(t, "admin", user.Login)
}

func TestVerifyAPIKey_UnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	user, err := testClient(server.URL).VerifyAPIKey(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_MissingUserIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).CurrentUser(context.Background())

	var remoteErr *RemoteError
	assert.True(t, errors.As(err, &remoteErr))
}
