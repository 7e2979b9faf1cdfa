package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/icsfeed"
	"weekly-scheduler/pkg/log"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lecture\r\n" +
	"SUMMARY:Algorithms lecture\r\n" +
	"DTSTART:20240506T090000Z\r\n" +
	"DTEND:20240506T103000Z\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=MO,WE\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:trip\r\n" +
	"SUMMARY:Trip\r\n" +
	"DTSTART;VALUE=DATE:20240509\r\n" +
	"DTEND;VALUE=DATE:20240511\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestPull(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer ts.Close()

	f := New(icsfeed.Source{ID: "school", URL: ts.URL}, icsfeed.NewFetcher(ts.Client()), log.NewNop())
	win := reconcile.NewWindow(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), time.UTC)

	b, err := f.Pull(context.Background(), win, "")
	require.NoError(t, err)
	assert.True(t, b.Full)
	assert.Equal(t, icsfeed.Hash([]byte(feed)), b.Cursor)
	assert.Equal(t, "school", f.Name())

	require.Len(t, b.Events, 2)
	sort.Slice(b.Events, func(i, j int) bool { return b.Events[i].Day.Index() < b.Events[j].Day.Index() })
	assert.Equal(t, model.Monday, b.Events[0].Day)
	assert.Equal(t, model.Wednesday, b.Events[1].Day)
	assert.Equal(t, model.NewClock(9, 0), b.Events[1].Start)
	assert.Equal(t, model.NewClock(10, 30), b.Events[1].End)
	assert.Equal(t, model.KindFixed, b.Events[1].Kind)
	assert.NotEqual(t, b.Events[0].Ref, b.Events[1].Ref)

	again, err := f.Pull(context.Background(), win, b.Cursor)
	require.NoError(t, err)
	assert.True(t, again.Unchanged)
	assert.Empty(t, again.Events)
}

func TestPullError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := New(icsfeed.Source{ID: "gone", URL: ts.URL}, icsfeed.NewFetcher(ts.Client()), log.NewNop())
	_, err := f.Pull(context.Background(), reconcile.NewWindow(time.Now(), time.UTC), "")
	assert.Error(t, err)
}
