package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phishguard/phishguard/pkg/insight"
	"github.com/phishguard/phishguard/pkg/risk"
	"github.com/phishguard/phishguard/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(id string, at time.Time, tier risk.Tier) *scan.Result {
	age := 120
	return &scan.Result{
		ID:              scan.ID(id),
		URL:             "https://" + id + ".test",
		Tier:            tier,
		ConfidenceScore: 80,
		DomainAgeDays:   &age,
		RiskLabel:       string(tier),
		StatusLabel:     "GENERAL DOMAIN",
		Insights:        []string{"✅ fine"},
		Details:         []insight.Insight{{Severity: insight.Info, Text: "fine"}},
		ScannedAt:       at,
	}
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Save(makeResult("a", at, risk.Safe)))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "https://a.test", got.URL)
	assert.Equal(t, 120, *got.DomainAgeDays)
	assert.True(t, at.Equal(got.ScannedAt))

	// Reopen from disk.
	s2, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.Len())
	got2, err := s2.Get("a")
	require.NoError(t, err)
	assert.Equal(t, got.Details, got2.Details)

	_, err = os.Stat(filepath.Join(dir, "index.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp index must not survive a save")
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_CopyOnRead(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(makeResult("a", time.Now(), risk.Safe)))

	got, err := s.Get("a")
	require.NoError(t, err)
	got.Insights[0] = "mutated"
	*got.DomainAgeDays = 1

	again, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "✅ fine", again.Insights[0])
	assert.Equal(t, 120, *again.DomainAgeDays)
}

func TestStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(makeResult("old", base, risk.Safe)))
	require.NoError(t, s.Save(makeResult("new", base.Add(2*time.Hour), risk.Critical)))
	require.NoError(t, s.Save(makeResult("mid", base.Add(time.Hour), risk.Caution)))

	list := s.List(0)
	require.Len(t, list, 3)
	assert.Equal(t, scan.ID("new"), list[0].ID)
	assert.Equal(t, scan.ID("mid"), list[1].ID)
	assert.Equal(t, scan.ID("old"), list[2].ID)

	assert.Len(t, s.List(2), 2)

	recs := s.Records(0)
	require.Len(t, recs, 3)
	assert.Equal(t, TierCounts{Safe: 1, Caution: 1, Critical: 1}, Aggregate(recs))
	require.NotNil(t, recs[0].ConfidenceScore)
	assert.Equal(t, 80, *recs[0].ConfidenceScore)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(makeResult("a", time.Now(), risk.Safe)))
	require.NoError(t, s.Clear())
	assert.Zero(t, s.Len())

	s2, err := NewStore(dir)
	require.NoError(t, err)
	assert.Zero(t, s2.Len())
}

func TestStore_RejectsResultWithoutID(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Save(&scan.Result{}))
	assert.Error(t, s.Save(nil))
}

func TestStore_CorruptIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644))
	_, err := NewStore(dir)
	assert.True(t, errors.Is(err, ErrCorruptIndex))
}
