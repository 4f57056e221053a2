package stats

import (
	"reflect"
	"testing"

	"github.com/ogrebenko/mailkeep/internal/models"
)

func TestBuildEmpty(t *testing.T) {
	r := Build(nil)
	if r.TotalAccounts != 0 || r.TotalUses != 0 || len(r.UseCounts) != 0 {
		t.Errorf("unexpected report for empty input: %+v", r)
	}
}

func TestBuildCountsAndOrder(t *testing.T) {
	accounts := []models.EmailAccount{
		{Email: "a@x.y", Uses: []string{"Netflix", "Work"}},
		{Email: "b@x.y", Uses: []string{"Work"}},
		{Email: "c@x.y", Uses: []string{"Work", "Spotify"}},
		{Email: "d@x.y"},
	}

	r := Build(accounts)
	if r.TotalAccounts != 4 {
		t.Errorf("TotalAccounts = %d, want 4", r.TotalAccounts)
	}
	if r.TotalUses != 5 {
		t.Errorf("TotalUses = %d, want 5", r.TotalUses)
	}
	want := []UseCount{
		{Use: "Work", Count: 3},
		{Use: "Netflix", Count: 1},
		{Use: "Spotify", Count: 1},
	}
	if !reflect.DeepEqual(r.UseCounts, want) {
		t.Errorf("UseCounts = %+v, want %+v", r.UseCounts, want)
	}
}

func TestBuildCountsDuplicatesWithinOneAccount(t *testing.T) {
	accounts := []models.EmailAccount{
		{Email: "a@x.y", Uses: []string{"Work", "Work"}},
	}
	r := Build(accounts)
	if r.TotalUses != 2 || r.UseCounts[0].Count != 2 {
		t.Errorf("duplicate labels not counted: %+v", r)
	}
}
