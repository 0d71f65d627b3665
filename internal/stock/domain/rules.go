package domain

// ReorderFor classifies a stock level against a reorder threshold.
// A threshold of 0 disables the check.
func ReorderFor(stock, reorder int) ReorderState {
	if reorder <= 0 {
		return ReorderOK
	}
	if stock <= 0 {
		return ReorderEmpty
	}
	if stock <= reorder {
		return ReorderLow
	}
	return ReorderOK
}

// SuggestLabels proposes how many labels to mint for a delivered quantity
func SuggestLabels(pkg *Package, quantity int) int {
	if quantity < 1 {
		return 0
	}
	if pkg.Ordering == OrderByPackage {
		return quantity * max(pkg.LabelsPerUnit, 1)
	}
	return quantity / max(pkg.PiecesPerLabel, 1)
}
