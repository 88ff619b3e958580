package mapper

import (
	"fmt"
	"testing"
	"time"

	"notesheet/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMapper(now time.Time) *SnapshotMapper {
	n := 0
	return NewSnapshotMapperWith(
		func() time.Time { return now },
		func() string { n++; return fmt.Sprintf("gen-%d", n) },
	)
}

func TestDecodeLegacyNotebook(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := []byte(`{"notebooks":[{"id":"1700000000000","name":"Old","cover":"green",
		"content":"<p>legacy body</p>","created":"2023-11-14T22:13:20Z","updated":"2023-11-15T08:00:00Z"}]}`)

	snapshot, migrated, err := fixedMapper(now).Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	require.Len(t, snapshot.Notebooks, 1)

	nb := snapshot.Notebooks[0]
	require.Len(t, nb.Sheets, 1)
	sheet := nb.Sheets[0]
	assert.Equal(t, "<p>legacy body</p>", sheet.Content)
	assert.Equal(t, entity.DefaultSheetTitle, sheet.Title)
	assert.Equal(t, "gen-1", sheet.Id)
	assert.True(t, sheet.Created.Equal(time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)))
	assert.True(t, sheet.Updated.Equal(time.Date(2023, 11, 15, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "green", nb.Cover.Key())
}

func TestDecodeLegacyWithoutTimestamps(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := []byte(`{"notebooks":[{"id":"a","name":"Bare","content":"x"}]}`)

	snapshot, migrated, err := fixedMapper(now).Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	assert.True(t, snapshot.Notebooks[0].Sheets[0].Created.Equal(now))
	assert.True(t, snapshot.LastSave.IsZero())
}

func TestDecodeEmptySheetsSynthesizesOne(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := []byte(`{"notebooks":[{"id":"a","name":"Empty","sheets":[]}]}`)

	snapshot, migrated, err := fixedMapper(now).Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
	require.Len(t, snapshot.Notebooks[0].Sheets, 1)
	assert.Empty(t, snapshot.Notebooks[0].Sheets[0].Content)
}

func TestDecodeMalformed(t *testing.T) {
	_, _, err := NewSnapshotMapper().Decode([]byte(`{"notebooks":`))
	assert.Error(t, err)
}

func TestDecodeUnknownCoverFallsBack(t *testing.T) {
	raw := []byte(`{"notebooks":[{"id":"a","name":"N","cover":"custom","sheets":[{"id":"s","title":"T","content":""}]}]}`)
	snapshot, _, err := NewSnapshotMapper().Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.CoverPalette, snapshot.Notebooks[0].Cover.Kind())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t0 := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
	t1 := t0.Add(90 * time.Minute)
	custom, err := entity.CustomCover("data:image/png;base64,iVBOR")
	require.NoError(t, err)

	in := &entity.Snapshot{
		LastSave: t1,
		Notebooks: []*entity.Notebook{
			{
				Id: "nb-1", Name: "Work", Cover: entity.PaletteCover(entity.PalettePurple),
				Created: t0, Updated: t1,
				Sheets: []*entity.Sheet{
					{Id: "s-1", Title: "Plan", Content: "<h1>Plan</h1><p>ship it</p>", Created: t0, Updated: t1},
					{Id: "s-2", Title: "Notes", Content: "", Created: t0, Updated: t0},
				},
			},
			{
				Id: "nb-2", Name: "Travel", Cover: custom, Created: t0, Updated: t0,
				Sheets: []*entity.Sheet{{Id: "s-3", Title: "Sheet 1", Content: "<p>Lisbon</p>", Created: t0, Updated: t0}},
			},
		},
	}

	m := NewSnapshotMapper()
	raw, err := m.Encode(in)
	require.NoError(t, err)

	out, migrated, err := m.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
	assert.True(t, in.LastSave.Equal(out.LastSave))
	require.Len(t, out.Notebooks, len(in.Notebooks))

	for i, want := range in.Notebooks {
		got := out.Notebooks[i]
		assert.Equal(t, want.Id, got.Id)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Cover, got.Cover)
		assert.True(t, want.Created.Equal(got.Created))
		assert.True(t, want.Updated.Equal(got.Updated))
		require.Len(t, got.Sheets, len(want.Sheets))
		for j, ws := range want.Sheets {
			gs := got.Sheets[j]
			assert.Equal(t, ws.Id, gs.Id)
			assert.Equal(t, ws.Title, gs.Title)
			assert.Equal(t, ws.Content, gs.Content)
			assert.True(t, ws.Created.Equal(gs.Created))
			assert.True(t, ws.Updated.Equal(gs.Updated))
		}
	}
}

func TestEncodeShape(t *testing.T) {
	custom, _ := entity.CustomCover("data:image/gif;base64,R0lG")
	snapshot := &entity.Snapshot{Notebooks: []*entity.Notebook{{
		Id: "n", Name: "N", Cover: custom,
		Sheets: []*entity.Sheet{{Id: "s", Title: "T"}},
	}}}

	raw, err := NewSnapshotMapper().Encode(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"notebooks":[{"id":"n","name":"N","cover":"custom","customCoverData":"data:image/gif;base64,R0lG",
		  "sheets":[{"id":"s","title":"T","content":""}]}]}`,
		string(raw))
}
