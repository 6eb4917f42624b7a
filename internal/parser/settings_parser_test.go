package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/pc_scorer_go/internal/scoring"
)

const entriesCSV = "\ufeffNo,DriverName,CoDriverName,CarName,車製造年,CarClass,係数,年齢係数\n" +
	"2,driver2,co2,car2,1968,B,1.2,\n" +
	"1,driver1,co1,car1,1972,A,1.0,1.1\n" +
	",,,,,,,\n" +
	"0,skip,,,,,,\n"

const pointCSV = "Order,Point\n1,100\n2,80\n3,60\n"

const sectionCSV = "type,section,name,time,GROUP,DAY\n" +
	"PC,PC1,Start,600,1,1\n" +
	"PC,PC2,Hill,00:12:30,1,1\n" +
	"PCG,PCG1,Group 1,1350,1,1\n" +
	"CO,CO1,Check,300,2,2\n"

func settingsDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "entries_2024.csv", entriesCSV)
	writeFile(t, dir, "point.csv", pointCSV)
	writeFile(t, dir, "section.csv", sectionCSV)
	return dir
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(settingsDir(t))
	require.NoError(t, err)

	require.Len(t, s.Entries, 2)
	e1, ok := s.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "driver1", e1.DriverName)
	assert.Equal(t, 1972, e1.CarYear)
	assert.Equal(t, scoring.Coefficients{Competition: 1.0, Age: 1.1}, e1.Coefficients)

	e2, _ := s.Entry(2)
	assert.Equal(t, 1.0, e2.Coefficients.Age, "blank coefficient defaults to 1.0")
	assert.Equal(t, "B", e2.Class)

	_, ok = s.Entry(3)
	assert.False(t, ok)

	assert.Equal(t, scoring.PointTable{1: 100, 2: 80, 3: 60}, s.Points)
	assert.Equal(t, s.Points, s.PointTable("PC1"))

	require.Len(t, s.Segments, 4)
	assert.True(t, s.HasDay)
	assert.Equal(t, 12*time.Minute+30*time.Second, s.Segments[1].Reference)
	pcg := s.Segments[2]
	assert.Equal(t, scoring.TypePCG, pcg.Type)
	assert.Equal(t, "PC1", pcg.SpanFrom)
	assert.Equal(t, "PC2", pcg.SpanTo)
	assert.Equal(t, 3, pcg.Position)
	assert.Equal(t, 2, s.Segments[3].Day)
}

func TestLoadSettingsPerSegmentPoints(t *testing.T) {
	dir := settingsDir(t)
	writeFile(t, dir, "point.csv", "Order,Point,section\n1,100,\n2,80,\n1,200,PCG1\n")

	s, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, scoring.PointTable{1: 100, 2: 80}, s.PointTable("PC1"))
	assert.Equal(t, scoring.PointTable{1: 200}, s.PointTable("PCG1"))
}

func TestLoadSettingsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir := settingsDir(t)
		writeFile(t, dir, "point_copy.csv", pointCSV)
		_, err := LoadSettings(dir)
		assert.ErrorContains(t, err, "several point*.csv")
	})
	t.Run("missing columns", func(t *testing.T) {
		dir := settingsDir(t)
		writeFile(t, dir, "entries_2024.csv", "No,DriverName\n1,x\n")
		_, err := LoadSettings(dir)
		assert.ErrorContains(t, err, "係数")
	})
	t.Run("bad coefficient", func(t *testing.T) {
		dir := settingsDir(t)
		writeFile(t, dir, "entries_2024.csv", "No,係数,年齢係数\n1,x,1\n")
		_, err := LoadSettings(dir)
		assert.ErrorContains(t, err, "invalid number")
	})
	t.Run("duplicate section", func(t *testing.T) {
		dir := settingsDir(t)
		writeFile(t, dir, "section.csv", "type,section,name,time,GROUP\nPC,PC1,a,1,1\nPC,PC1,b,1,1\n")
		_, err := LoadSettings(dir)
		assert.ErrorContains(t, err, "listed twice")
	})
	t.Run("type from name", func(t *testing.T) {
		dir := settingsDir(t)
		writeFile(t, dir, "section.csv", "type,section,name,time,GROUP\n,CO7,a,60,1\n")
		s, err := LoadSettings(dir)
		require.NoError(t, err)
		assert.Equal(t, scoring.TypeCO, s.Segments[0].Type)
		assert.False(t, s.HasDay)
	})
}
