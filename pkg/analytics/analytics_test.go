package analytics

import (
	"testing"

	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/google/go-cmp/cmp"
)

func TestWords(t *testing.T) {
	a := New(lexicon.Default())
	got := a.Words("The Best Trail-Running Shoes for Women's 2024 season, a 5 star pick!")
	want := []string{"best", "trail", "running", "shoes", "women", "season", "star", "pick"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
}

func TestTopNWords(t *testing.T) {
	a := New(lexicon.Default())

	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{"frequency first", "shoes trail running shoes trail shoes", 2, []string{"shoes", "trail"}},
		{"ties keep order", "kettle tea pot", 5, []string{"kettle", "tea", "pot"}},
		{"stop words only", "the and of with", 3, []string{}},
		{"zero", "kettle", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.TopNWords(tt.text, tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopNWords() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWordFrequency(t *testing.T) {
	a := New(lexicon.Default())
	got := a.WordFrequency("Sale sale SALE on kettles")
	want := map[string]int{"sale": 3, "kettles": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WordFrequency() mismatch (-want +got):\n%s", diff)
	}
}
