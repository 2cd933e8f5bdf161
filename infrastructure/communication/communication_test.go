package communication

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackRoutesByChannel(t *testing.T) {
	var channels, texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		channels = append(channels, r.FormValue("channel"))
		texts = append(texts, r.FormValue("text"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1.0"}`))
	}))
	defer srv.Close()

	s := NewSlack("xoxb-test", SlackOption{InfoChannelID: "CINFO", ErrorChannelID: "CERR", APIURL: srv.URL + "/"})

	require.NoError(t, s.Info("roster sent"))
	require.NoError(t, s.Error("upload orphaned"))

	assert.Equal(t, []string{"CINFO", "CERR"}, channels)
	assert.Equal(t, []string{"roster sent", "upload orphaned"}, texts)
}

func TestSlackSkipsUnsetChannel(t *testing.T) {
	s := NewSlack("xoxb-test", SlackOption{APIURL: "http://127.0.0.1:0/"})
	assert.NoError(t, s.Info("nothing"))
}

func TestSlackReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	s := NewSlack("xoxb-test", SlackOption{ErrorChannelID: "CERR", APIURL: srv.URL + "/"})
	err := s.Error("boom")
	assert.ErrorContains(t, err, "channel_not_found")
}
