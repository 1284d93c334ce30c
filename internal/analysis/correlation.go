package analysis

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"startupeda/internal/stats"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

type feature struct {
	name   string
	values []float64
	nulls  []bool
}

// correlations ranks every numeric or boolean feature by the absolute value
// of its Pearson and Spearman correlation with the binary outcome. The two
// rankings are computed concurrently.
func correlations(ctx context.Context, t *table.Table, target string, outcome []float64, outcomeNull []bool, topN int) (domain.Correlations, error) {
	var features []feature
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		if col.Name() == target {
			continue
		}
		if values, nulls, ok := numericValues(col); ok {
			features = append(features, feature{name: col.Name(), values: values, nulls: nulls})
		}
	}

	result := domain.Correlations{Target: target}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ranked, err := rankFeatures(gctx, features, outcome, outcomeNull, stats.Pearson, topN)
		result.Pearson = ranked
		return err
	})
	g.Go(func() error {
		ranked, err := rankFeatures(gctx, features, outcome, outcomeNull, stats.Spearman, topN)
		result.Spearman = ranked
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Correlations{}, err
	}
	return result, nil
}

func rankFeatures(ctx context.Context, features []feature, y []float64, yNull []bool,
	corr func(x, y []float64) float64, topN int) ([]domain.FeatureCorrelation, error) {
	out := make([]domain.FeatureCorrelation, 0, len(features))
	for _, f := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		xs, ys := pairs(f.values, f.nulls, y, yNull)
		c := corr(xs, ys)
		if math.IsNaN(c) {
			continue
		}
		out = append(out, domain.FeatureCorrelation{Feature: f.name, Coefficient: c})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Coefficient), math.Abs(out[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		return out[i].Feature < out[j].Feature
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}
