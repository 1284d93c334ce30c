package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// SampleStartupColumns is the header of SampleStartupRows: a trimmed subset
// of the startup outcome dataset with every column the default pipeline reads.
var SampleStartupColumns = []string{
	"Unnamed: 0", "state_code", "latitude", "city", "name",
	"founded_at", "closed_at", "first_funding_at", "last_funding_at",
	"age_first_funding_year", "age_last_funding_year",
	"age_first_milestone_year", "age_last_milestone_year",
	"relationships", "funding_rounds", "funding_total_usd", "milestones",
	"category_code", "has_VC", "has_angel", "has_roundA", "has_roundB",
	"has_roundC", "has_roundD", "avg_participants", "is_top500", "status",
}

// SampleStartupRows returns a header plus six startups in the raw dataset's
// format, including a closed company, blank milestone ages and a negative age.
func SampleStartupRows() [][]string {
	return [][]string{
		SampleStartupColumns,
		{"1005", "CA", "42.35", "San Diego", "Bandsintown", "1/1/2007", "", "4/1/2009", "1/1/2010", "2.2493", "3.0027", "4.6685", "6.7041", "3", "3", "375000", "3", "music", "0", "1", "0", "0", "0", "0", "1", "0", "acquired"},
		{"204", "CA", "37.23", "Los Gatos", "TriCipher", "1/1/2000", "", "2/14/2005", "12/28/2009", "5.126", "9.9973", "7.0055", "7.0055", "9", "4", "40100000", "1", "enterprise", "1", "0", "0", "1", "1", "1", "4.75", "1", "acquired"},
		{"1001", "CA", "32.9", "San Diego", "Plixi", "3/18/2009", "", "3/30/2010", "3/30/2010", "1.0329", "1.0329", "1.4575", "2.2055", "5", "1", "2600000", "2", "web", "0", "0", "1", "0", "0", "0", "4", "1", "acquired"},
		{"738", "CA", "37.32", "Cupertino", "Solidcore Systems", "1/1/2002", "", "8/17/2005", "4/8/2010", "3.6164", "8.2055", "6.0027", "6.0027", "5", "3", "40000000", "1", "software", "0", "0", "0", "1", "1", "1", "3.3333", "1", "acquired"},
		{"1002", "CA", "37.78", "San Francisco", "Inhale Digital", "8/1/2010", "10/1/2012", "8/1/2010", "4/1/2012", "0", "1.6685", "", "", "2", "2", "1300000", "1", "games_video", "1", "1", "0", "0", "0", "0", "1", "1", "closed"},
		{"379", "MA", "42.36", "Boston", "Mobilecast", "5/1/2007", "1/1/2010", "6/1/2008", "6/1/2008", "-1.0849", "1.0849", "", "", "3", "1", "700000", "0", "mobile", "1", "0", "0", "0", "0", "0", "1", "0", "closed"},
	}
}

// WriteCSV writes rows to name inside a fresh temp directory and returns the path
func WriteCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadCSV reads every record of the CSV file at path
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}
