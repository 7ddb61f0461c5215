package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankcheck/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	pos := 4
	st := models.LookupState{
		Status:          models.StatusSucceeded,
		Sequence:        7,
		MatchedPosition: &pos,
		Results:         []models.OrganicResult{},
		UpdatedAt:       time.Unix(1700000000, 0),
	}
	ev := NewLookupEvent("sess-1", st)

	err := NewSender("s3cret", time.Second).Deliver(context.Background(), srv.URL, ev)
	require.NoError(t, err)

	assert.Equal(t, "sha256="+Sign("s3cret", gotBody), gotSig)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventLookupSucceeded, decoded.Type)
	assert.Equal(t, "sess-1", decoded.SessionID)
	assert.Equal(t, uint64(7), decoded.Sequence)
	assert.Equal(t, int64(1700000000), decoded.Timestamp)
	require.NotNil(t, decoded.Data.MatchedPosition)
	assert.Equal(t, 4, *decoded.Data.MatchedPosition)
}

func TestDeliver_UnsignedWithoutSecret(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
	}))
	defer srv.Close()

	ev := NewLookupEvent("s", models.LookupState{Status: models.StatusFailed})
	require.NoError(t, NewSender("", time.Second).Deliver(context.Background(), srv.URL, ev))
	assert.Empty(t, gotSig)
	assert.Equal(t, EventLookupFailed, ev.Type)
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewSender("", time.Second).Deliver(context.Background(), srv.URL, NewLookupEvent("s", models.LookupState{}))
	assert.ErrorContains(t, err, "status 500")
}
