package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsFormToAccountEndpoint(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotFrom = r.PostForm.Get("From")
		gotTo = r.PostForm.Get("To")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:    srv.URL,
		AccountSID: "AC42",
		AuthToken:  "secret",
		From:       "+14155238886",
		To:         "whatsapp:+15550001111",
	})
	require.NoError(t, c.Send(context.Background(), "Ludicrous Mode boosts acceleration."))

	assert.Equal(t, "/2010-04-01/Accounts/AC42/Messages.json", gotPath)
	assert.Equal(t, "AC42", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "whatsapp:+14155238886", gotFrom, "scheme added when missing")
	assert.Equal(t, "whatsapp:+15550001111", gotTo, "existing scheme kept")
	assert.Equal(t, "Ludicrous Mode boosts acceleration.", gotBody)
}

func TestSend_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"authenticate"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, AccountSID: "AC42", AuthToken: "bad", From: "+1", To: "+2"})
	err := c.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
