package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReorderFor(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		reorder int
		want    ReorderState
	}{
		{"disabled threshold with no stock", 0, 0, ReorderOK},
		{"empty", 0, 3, ReorderEmpty},
		{"low", 2, 3, ReorderLow},
		{"at threshold is low", 3, 3, ReorderLow},
		{"above threshold", 4, 3, ReorderOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReorderFor(tt.stock, tt.reorder))
		})
	}
}

func TestSuggestLabels(t *testing.T) {
	byPiece := &Package{Ordering: OrderByPiece, PiecesPerLabel: 5, LabelsPerUnit: 1}
	byPackage := &Package{Ordering: OrderByPackage, PiecesPerLabel: 1, LabelsPerUnit: 4}

	assert.Equal(t, 2, SuggestLabels(byPiece, 10))
	assert.Equal(t, 12, SuggestLabels(byPackage, 3))
	assert.Equal(t, 0, SuggestLabels(byPiece, 0))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "in_stock", LabelInStock.String())
	assert.Equal(t, "cancelled", LabelCancelled.String())
	assert.Equal(t, "draft", RequestDraft.String())
	assert.Equal(t, "removed", ItemRemoved.String())
	assert.Equal(t, "by_package", OrderByPackage.String())
}

func TestParseRequestStatus(t *testing.T) {
	for _, s := range []RequestStatus{RequestClosed, RequestDraft, RequestSent} {
		parsed, ok := ParseRequestStatus(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}

	_, ok := ParseRequestStatus("archived")
	assert.False(t, ok)
}
