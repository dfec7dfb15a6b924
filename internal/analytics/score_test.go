package analytics

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"brandwatch/internal/models"
)

func f(v float64) *float64 { return &v }

func TestVisibilityScore(t *testing.T) {
	tests := []struct {
		name                   string
		position, rate, rating float64
		want                   float64
	}{
		{"no data", 100, 0, 0, 0},
		{"top position only", 1, 0, 0, 39.6},
		{"mixed", 10, 50, 4.5, 36 + 20 + 18},
		{"reference brand", 10, 75, 4.5, 84},
		{"position beyond 100 clamps", 120, 0, 0, 0},
		{"perfect", 0, 100, 5, 40 + 40 + 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round1(VisibilityScore(tt.position, tt.rate, tt.rating))
			if got != tt.want {
				t.Errorf("VisibilityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	strongID := uuid.New()
	stats := []models.BrandStats{
		{BrandName: "Empty"},
		{BrandID: strongID, BrandName: "Strong", AveragePosition: f(2.25), CitationRate: f(75), AverageRating: f(4.44)},
		{BrandName: "Weak", AveragePosition: f(80), CitationRate: f(10)},
	}

	got := Compare(stats)

	want := []models.BrandComparison{
		{BrandID: strongID, BrandName: "Strong", VisibilityScore: 86.9, SearchScore: 97.8, AIScore: 75, ReviewScore: 88.8},
		{BrandName: "Weak", VisibilityScore: 12, SearchScore: 20, AIScore: 10, ReviewScore: 0},
		{BrandName: "Empty", VisibilityScore: 0, SearchScore: 0, AIScore: 0, ReviewScore: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compare() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestCitationRate(t *testing.T) {
	tests := []struct {
		mentioned, total int
		want             float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := CitationRate(tt.mentioned, tt.total); got != tt.want {
			t.Errorf("CitationRate(%d, %d) = %v, want %v", tt.mentioned, tt.total, got, tt.want)
		}
	}
}
