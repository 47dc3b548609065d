package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
)

func TestEventInterface(t *testing.T) {
	t.Parallel()

	res := &scan.Result{ID: "scan-1", URL: "http://a.com", Tier: risk.Safe}
	all := []Event{
		NewStart("scan-1", "http://a.com", 4),
		NewProgress("scan-1", 1, 4, "🚀", "Initializing Security Protocols..."),
		NewComplete(res, Notice{Class: NoticeSuccess, Title: "Domain Verified Safe"}, time.Second),
		NewError("scan-1", "http://a.com", Notice{Class: NoticeError, Title: "x"}, "transport", errors.New("boom"), time.Second),
	}

	for i, e := range all {
		assert.Equal(t, AllTypes()[i], e.EventType())
		assert.Equal(t, "scan-1", e.ScanID())
		assert.False(t, e.Timestamp().IsZero())
	}
}

func TestProgressEvent_Percent(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 50.0, NewProgress("s", 2, 4, "", "").Percent(), 0.001)
	assert.Zero(t, NewProgress("s", 2, 0, "", "").Percent())
}

func TestErrorEvent_MessageIsNoticeTitle(t *testing.T) {
	t.Parallel()

	e := NewError("s", "u", Notice{Class: NoticeError, Title: "Error connecting to scanner engine"}, "status", errors.New("502 Bad Gateway"), 0)
	assert.Equal(t, "Error connecting to scanner engine", e.Message)
	assert.Equal(t, "502 Bad Gateway", e.Cause)

	e = NewError("s", "u", Notice{}, "", nil, 0)
	assert.Empty(t, e.Cause)
}

func TestBaseEventJSON(t *testing.T) {
	t.Parallel()

	e := NewProgress("scan-9", 3, 4, "🔓", "Decrypting SSL Certificates...")
	data, err := jsonutil.Marshal(e)
	require.NoError(t, err)

	obj, err := jsonutil.DecodeObject(data)
	require.NoError(t, err)
	typ, _ := obj.String("type")
	id, _ := obj.String("scan_id")
	stage, _ := obj.Int("stage")
	assert.Equal(t, "progress", typ)
	assert.Equal(t, "scan-9", id)
	assert.Equal(t, 3, stage)
	assert.True(t, obj.Has("timestamp"))
}
