package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lexbrief-backend/embedding"
)

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"empty", nil, "[]"},
		{"single", []float64{0.5}, "[0.500000]"},
		{"multiple", []float64{1, -0.25, 0}, "[1.000000,-0.250000,0.000000]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatVector(tt.values); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPgvectorSearchValidation(t *testing.T) {
	idx := &PgvectorIndex{}

	_, err := idx.Search(context.Background(), Query{Vector: make([]float64, embedding.Dimension)}, 0)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("k=0: expected ErrInvalidQuery, got %v", err)
	}

	_, err = idx.Search(context.Background(), Query{Vector: make([]float64, 3)}, 5)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("dimension mismatch: expected ErrInvalidQuery, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "768") {
		t.Errorf("expected the configured dimension in the message, got %v", err)
	}
}

func TestPgvectorUpsertValidation(t *testing.T) {
	idx := &PgvectorIndex{}

	err := idx.Upsert(context.Background(), []Entry{{ID: "0", Values: []float64{1, 2}}})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for a short vector, got %v", err)
	}
}
