package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/errors"
	"github.com/labstock/labstock-backend/pkg/logger"
)

// ABC class boundaries as cumulative percentages of consumption
const (
	classALimit = 80
	classBLimit = 95
)

var hundred = decimal.NewFromInt(100)

// AnalysisService computes FEFO compliance and ABC rotation over a window
type AnalysisService struct {
	*core
	logger *logger.Logger
}

// Window is the half-open interval [From, To)
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// LastDays returns the window ending now and starting days earlier.
// Zero days selects the configured default.
func (s *AnalysisService) LastDays(days int) (Window, error) {
	if days == 0 {
		days = s.cfg.AnalysisDays
	}
	if days < 1 {
		return Window{}, errors.Invalid(domain.CodeWindowInvalid, "the analysis window must span at least one day")
	}
	to := s.now()
	return Window{From: to.AddDate(0, 0, -days), To: to}, nil
}

// NewWindow checks an explicit window
func NewWindow(from, to time.Time) (Window, error) {
	if !from.Before(to) {
		return Window{}, errors.Invalid(domain.CodeWindowInvalid, "the analysis window must end after it starts")
	}
	return Window{From: from, To: to}, nil
}

// FEFOCompliance reports first-expired-first-out efficiency for every package
// with an unload in the window
func (s *AnalysisService) FEFOCompliance(ctx context.Context, w Window) ([]*domain.FEFOReport, error) {
	movements, err := s.st.Labels.Movements(ctx, w.From, w.To)
	if err != nil {
		return nil, storeError(s.logger, "label movements", err, ids("from", w.From, "to", w.To))
	}
	return FEFO(movements, w.From, w.To), nil
}

// PackageFEFO reports the FEFO efficiency of one package. A package without
// unloads in the window is fully compliant.
func (s *AnalysisService) PackageFEFO(ctx context.Context, packageID int64, w Window) (*domain.FEFOReport, error) {
	if _, err := s.st.Packages.Get(ctx, packageID); err != nil {
		return nil, storeError(s.logger, "get package", err, ids("package_id", packageID))
	}

	reports, err := s.FEFOCompliance(ctx, w)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if r.PackageID == packageID {
			return r, nil
		}
	}
	return &domain.FEFOReport{PackageID: packageID, Efficiency: decimal.NewFromInt(1)}, nil
}

// ABC ranks enabled packages by labels unloaded in the window
func (s *AnalysisService) ABC(ctx context.Context, w Window) ([]*domain.Rotation, error) {
	consumption, err := s.st.Labels.Consumption(ctx, w.From, w.To)
	if err != nil {
		return nil, storeError(s.logger, "consumption", err, ids("from", w.From, "to", w.To))
	}
	return ClassifyABC(consumption), nil
}

// FEFO scores every label unloaded in [from, to). An unload is a violation
// when another non-cancelled label of the same package with an earlier
// expiration was already loaded and still in stock at that moment, whether it
// is still in stock now or was unloaded later. Labels of batches without an
// expiration are not scored.
func FEFO(movements []*domain.LabelMovement, from, to time.Time) []*domain.FEFOReport {
	byPackage := make(map[int64][]*domain.LabelMovement)
	var order []int64
	for _, m := range movements {
		if m.Status == domain.LabelCancelled {
			continue
		}
		if _, seen := byPackage[m.PackageID]; !seen {
			order = append(order, m.PackageID)
		}
		byPackage[m.PackageID] = append(byPackage[m.PackageID], m)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	reports := make([]*domain.FEFOReport, 0, len(order))
	for _, packageID := range order {
		labels := byPackage[packageID]
		report := &domain.FEFOReport{PackageID: packageID}

		for _, u := range labels {
			if u.Status != domain.LabelUsed || u.Unloaded == nil || u.Expiration == nil {
				continue
			}
			at := *u.Unloaded
			if at.Before(from) || !at.Before(to) {
				continue
			}

			report.Total++
			for _, m := range labels {
				if m.LabelID == u.LabelID || m.Expiration == nil {
					continue
				}
				if !m.Expiration.Before(*u.Expiration) || m.Loaded.After(at) {
					continue
				}
				if m.Unloaded == nil || m.Unloaded.After(at) {
					report.Violations++
					break
				}
			}
		}

		report.Efficiency = efficiency(report.Total, report.Violations)
		reports = append(reports, report)
	}
	return reports
}

func efficiency(total, violations int) decimal.Decimal {
	if total == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(total - violations)).
		Div(decimal.NewFromInt(int64(total))).
		Round(4)
}

// ClassifyABC ranks packages by consumption, highest first with ties by
// package id, and assigns A up to 80% cumulative consumption, B up to 95%
// and C beyond. Without any consumption every package is C.
func ClassifyABC(consumption []*domain.Consumption) []*domain.Rotation {
	ranked := make([]*domain.Consumption, len(consumption))
	copy(ranked, consumption)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Unloaded != ranked[j].Unloaded {
			return ranked[i].Unloaded > ranked[j].Unloaded
		}
		return ranked[i].PackageID < ranked[j].PackageID
	})

	total := 0
	for _, c := range ranked {
		total += c.Unloaded
	}

	rotations := make([]*domain.Rotation, 0, len(ranked))
	cumulative := 0
	for _, c := range ranked {
		cumulative += c.Unloaded
		r := &domain.Rotation{
			PackageID:  c.PackageID,
			Unloaded:   c.Unloaded,
			Share:      decimal.Zero,
			Cumulative: decimal.Zero,
			Class:      domain.ClassC,
		}

		if total > 0 {
			t := decimal.NewFromInt(int64(total))
			r.Share = decimal.NewFromInt(int64(c.Unloaded)).Mul(hundred).Div(t).Round(2)
			r.Cumulative = decimal.NewFromInt(int64(cumulative)).Mul(hundred).Div(t).Round(2)

			switch {
			case cumulative*100 <= classALimit*total:
				r.Class = domain.ClassA
			case cumulative*100 <= classBLimit*total:
				r.Class = domain.ClassB
			}
		}
		rotations = append(rotations, r)
	}
	return rotations
}
