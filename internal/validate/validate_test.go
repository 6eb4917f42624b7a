package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pc_scorer_go/internal/config"
	"github.com/user/pc_scorer_go/internal/parser"
	"github.com/user/pc_scorer_go/internal/scoring"
)

func raceDir(t *testing.T, files map[string]string) *parser.RaceData {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	data, err := parser.ParseRaceDir(dir)
	require.NoError(t, err)
	return data
}

func eventSettings() *parser.Settings {
	return &parser.Settings{
		Entries: []parser.Entry{
			{Competitor: scoring.Competitor{Bib: 1}},
			{Competitor: scoring.Competitor{Bib: 2}},
			{Competitor: scoring.Competitor{Bib: 3}},
		},
		Points: scoring.PointTable{1: 10},
		Segments: []scoring.Segment{
			{ID: "PC1", Type: scoring.TypePC, Position: 1, Group: 1},
			{ID: "PC2", Type: scoring.TypePC, Position: 2, Group: 1},
			{ID: "CO1", Type: scoring.TypeCO, Position: 3, Group: 2},
		},
	}
}

func repo(t *testing.T, overlay *config.Overlay) *config.Repository {
	t.Helper()
	r, err := config.NewRepository(eventSettings(), config.Default(), overlay)
	require.NoError(t, err)
	return r
}

var groupOne = map[string]string{
	"PC1START.csv":         "id,time,number\n1,09:15:00,1\n2,09:01:00,2\n3,09:02:00,3\n4,09:03:00,9\n",
	"PC1GOAL_PC2START.csv": "id,time,number\n1,09:10:00,1\n2,09:11:00,2\n3,09:12:00,3\n",
	"PC2GOAL.csv":          "id,time,number\n1,09:20:00,2\n2,09:21:00,1\n",
}

func kinds(issues []Issue) []Kind {
	out := make([]Kind, len(issues))
	for i, is := range issues {
		out[i] = is.Kind
	}
	return out
}

func TestRun(t *testing.T) {
	overlay := config.NewOverlay()
	require.NoError(t, overlay.SetSegmentStatus(3, "PC1", scoring.StatusRetired))

	issues := Run(raceDir(t, groupOne), repo(t, overlay))
	require.Equal(t, []Kind{KindUnknownBib, KindSectionOrder, KindBibOrder, KindInvalidStatus}, kinds(issues))

	assert.Equal(t, 9, issues[0].Bib)
	assert.Equal(t, "PC2", issues[1].Segment)
	assert.Contains(t, issues[1].Message, "[2 1]")
	assert.Equal(t, 1, issues[2].Bib)
	assert.Contains(t, issues[2].Message, "PC2 -> PC1")
	assert.Equal(t, "bib 3 is RIT on PC1 but has a START and GOAL clock", issues[3].Message)
	assert.Equal(t, "[invalid_status] bib 3 is RIT on PC1 but has a START and GOAL clock", issues[3].String())
}

func TestSectionOrderMissingAndExtra(t *testing.T) {
	files := map[string]string{
		"PC1START.csv":         "id,time,number\n1,09:00:00,1\n2,09:01:00,2\n",
		"PC1GOAL_PC2START.csv": "id,time,number\n1,09:10:00,1\n2,09:11:00,2\n3,09:12:00,3\n",
		"PC2GOAL.csv":          "id,time,number\n1,09:20:00,1\n2,09:21:00,2\n",
	}
	issues := Run(raceDir(t, files), repo(t, nil))
	require.Len(t, issues, 1)
	assert.Equal(t, KindSectionOrder, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "missing bibs [3]")

	files["PC1GOAL_PC2START.csv"] = "id,time,number\n1,09:10:00,1\n"
	issues = Run(raceDir(t, files), repo(t, nil))
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "has bibs [2] absent from PC1")
}

func TestDuplicateTokens(t *testing.T) {
	data := raceDir(t, map[string]string{
		"PC1START.csv":         "id,time,number\n1,09:00:00,1\n",
		"PC1GOAL.csv":          "id,time,number\n1,09:10:00,1\n",
		"PC1GOAL_PC2START.csv": "id,time,number\n1,09:10:00,1\n",
	})
	issues := duplicateTokens(data)
	require.Len(t, issues, 1)
	assert.Equal(t, "timing point PC1GOAL appears in several files: PC1GOAL.csv, PC1GOAL_PC2START.csv", issues[0].Message)
}

func TestRunCleanData(t *testing.T) {
	files := map[string]string{
		"PC1START.csv":         "id,time,number\n1,09:00:00,1\n2,09:01:00,2\n3,09:02:00,3\n",
		"PC1GOAL_PC2START.csv": "id,time,number\n1,09:10:00,1\n2,09:11:00,2\n3,09:12:00,3\n",
		"PC2GOAL.csv":          "id,time,number\n1,09:20:00,1\n2,09:21:00,2\n3,09:22:00,3\n",
	}
	assert.Empty(t, Run(raceDir(t, files), repo(t, nil)))
}

func TestInvalidStatusFollowsResolver(t *testing.T) {
	overlay := config.NewOverlay()
	require.NoError(t, overlay.SetSegmentStatus(1, "PC1", scoring.StatusNoClassification))
	require.NoError(t, overlay.SetSegmentStatus(2, "PC1", scoring.StatusBlank))
	data := raceDir(t, groupOne)

	issues := invalidStatus(data, eventSettings().Segments, repo(t, overlay))
	require.Len(t, issues, 1, "N.C. keeps its clocks")
	assert.Equal(t, 2, issues[0].Bib)
	assert.Equal(t, "bib 2 is BLNK on PC1 but has a START and GOAL clock", issues[0].Message)
}

func TestOverlay(t *testing.T) {
	overlay := config.NewOverlay()
	require.NoError(t, overlay.SetSegmentStatus(1, "pc1", scoring.StatusRetired))
	require.NoError(t, overlay.SetSegmentStatus(42, "PC1", scoring.StatusRetired))
	require.NoError(t, overlay.SetSegmentStatus(2, "PC2", scoring.StatusRetired))
	require.NoError(t, overlay.SetTotalStatus(77, scoring.StatusRetired))

	issues := Overlay(overlay, eventSettings())
	require.Equal(t, []Kind{KindUnknownOverlay, KindUnknownOverlay, KindUnknownOverlay}, kinds(issues))
	assert.Equal(t, "[unknown_overlay] overlay segments: bib 1 on pc1: unknown segment, did you mean PC1?", issues[0].String())
	assert.Equal(t, 42, issues[1].Bib)
	assert.Equal(t, "PC1", issues[1].Segment)
	assert.Equal(t, "overlay total: bib 77: no entry for this bib", issues[2].Message)

	_, err := config.NewRepository(eventSettings(), config.Default(), overlay)
	require.Error(t, err, "scoring never sees a malformed overlay")

	assert.Empty(t, Overlay(config.NewOverlay(), eventSettings()))
}
