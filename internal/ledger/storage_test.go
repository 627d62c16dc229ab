package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSnapshot_Format(t *testing.T) {
	claim := "2025-01-02T03:04:05.000000+00:00 ő <b>"
	snapshot := NewSnapshot()
	snapshot.Economy["1"] = EconomyEntry{Balance: 10, LastClaim: EncodeClaim(claim)}
	snapshot.Economy["2"] = EconomyEntry{Balance: -3}
	snapshot.Shulk["1"] = 4

	data, err := EncodeSnapshot(snapshot)
	require.NoError(t, err)

	expected := `{
  "economy": {
    "1": {
      "balance": 10,
      "last_claim": "2025-01-02T03:04:05.000000+00:00 ő <b>"
    },
    "2": {
      "balance": -3,
      "last_claim": null
    }
  },
  "shulk": {
    "1": 4
  }
}`
	assert.Equal(t, expected, string(data))
}

func TestDecodeSnapshot(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "full document", input: `{"economy": {"1": {"balance": 2, "last_claim": null}}, "shulk": {"1": 0}}`},
		{name: "empty object", input: `{}`},
		{name: "numeric last_claim", input: `{"economy": {"1": {"balance": 2, "last_claim": 12345}}}`},
		{name: "boolean last_claim", input: `{"economy": {"1": {"balance": 2, "last_claim": false}}}`},
		{name: "object last_claim", input: `{"economy": {"1": {"balance": 2, "last_claim": {"at": 1}}}}`},
		{name: "null document", input: `null`},
		{name: "truncated", input: `{"economy": `, wantErr: true},
		{name: "wrong shape", input: `[]`, wantErr: true},
		{name: "fractional balance", input: `{"shulk": {"1": 1.5}}`, wantErr: true},
		{name: "empty file", input: ``, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			snapshot, err := DecodeSnapshot([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, snapshot.Economy)
			assert.NotNil(t, snapshot.Shulk)
		})
	}
}

func TestFileStorage_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "balances.json")
	storage := NewFileStorage(path)
	ctx := context.Background()

	first := NewSnapshot()
	first.Shulk["1"] = 1
	require.NoError(t, storage.Save(ctx, first))

	second := NewSnapshot()
	second.Shulk["1"] = 2
	require.NoError(t, storage.Save(ctx, second))

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Shulk["1"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "balances.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileStorage_SaveIntoMissingDirectoryFails(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "missing", "balances.json"))

	err := storage.Save(context.Background(), NewSnapshot())
	assert.Error(t, err)
}

func TestFileStorage_LoadMissing(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "balances.json"))

	_, err := storage.Load(context.Background())
	assert.ErrorIs(t, err, ErrLedgerNotFound)
}

func TestFileStorage_IsOwnContent(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "balances.json"))
	snapshot := NewSnapshot()
	require.NoError(t, storage.Save(context.Background(), snapshot))

	data, err := EncodeSnapshot(snapshot)
	require.NoError(t, err)

	assert.True(t, storage.IsOwnContent(data))
	assert.False(t, storage.IsOwnContent([]byte(`{"economy": {"1": {"balance": 999999}}}`)))
}

func TestFileStorage_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, NewFileStorage(filepath.Join(dir, "balances.json")).HealthCheck(context.Background()))
	assert.Error(t, NewFileStorage(filepath.Join(dir, "nope", "balances.json")).HealthCheck(context.Background()))
	assert.Error(t, NewFileStorage(dir).HealthCheck(context.Background()))
}

func TestParseClaimTime(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		ok     bool
		expect time.Time
	}{
		{name: "python isoformat", raw: "2025-01-02T03:04:05.123456+00:00", ok: true, expect: time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{name: "zulu", raw: "2025-01-02T03:04:05Z", ok: true, expect: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "offset is normalized", raw: "2025-01-02T05:04:05+02:00", ok: true, expect: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "naive is utc", raw: "2025-01-02T03:04:05", ok: true, expect: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "yesterday-ish", ok: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseClaimTime(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.expect.Equal(got), "got %s", got)
			}
		})
	}
}

func TestFormatClaimTime_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 250000000, time.FixedZone("CET", 3600))

	formatted := FormatClaimTime(now)
	assert.True(t, strings.HasSuffix(formatted, "+00:00"))

	parsed, ok := ParseClaimTime(formatted)
	require.True(t, ok)
	assert.True(t, now.Equal(parsed))
}

func TestEconomyEntry_ClaimText(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		expect string
	}{
		{name: "absent", raw: ``, expect: ""},
		{name: "null", raw: `null`, expect: ""},
		{name: "timestamp", raw: `"2025-01-02T03:04:05.000000+00:00"`, expect: "2025-01-02T03:04:05.000000+00:00"},
		{name: "number", raw: `12345`, expect: "12345"},
		{name: "boolean", raw: `false`, expect: "false"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			entry := EconomyEntry{LastClaim: []byte(tc.raw)}
			assert.Equal(t, tc.expect, entry.ClaimText())
		})
	}
}

func TestEncodeClaim(t *testing.T) {
	assert.Nil(t, EncodeClaim(""))
	assert.Equal(t, `"2025-01-02T03:04:05.000000+00:00"`, string(EncodeClaim("2025-01-02T03:04:05.000000+00:00")))
}
