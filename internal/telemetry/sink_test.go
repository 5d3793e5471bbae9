package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestReportPostsEventToCollector(t *testing.T) {
	received := make(chan ReseedEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt ReseedEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&evt))
		received <- evt
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSink(srv.URL, discardLogger())
	sink.Report(ReseedEvent{GeneratorID: "g1", ReseedCount: 3, Priority: "Normal"})

	select {
	case evt := <-received:
		require.Equal(t, "g1", evt.GeneratorID)
		require.EqualValues(t, 3, evt.ReseedCount)
	case <-time.After(2 * time.Second):
		t.Fatal("collector never received the event")
	}
}

func TestReportWithNoEndpointIsNoop(t *testing.T) {
	sink := NewSink("", discardLogger())
	sink.Report(ReseedEvent{GeneratorID: "g1"})
	// No assertion needed beyond "does not panic or block"; give the
	// background goroutine (if any were started) a moment to settle.
	time.Sleep(10 * time.Millisecond)
}

func TestReportToUnreachableEndpointDoesNotPanic(t *testing.T) {
	sink := NewSink("http://127.0.0.1:1", discardLogger())
	require.NotPanics(t, func() {
		sink.Report(ReseedEvent{GeneratorID: "g1"})
		time.Sleep(50 * time.Millisecond)
	})
}
