package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/inventory-abc/internal/analysis"
	"github.com/andresuchdata/inventory-abc/internal/cache"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type InventoryService struct {
	analyzer *analysis.Analyzer
	renderer report.ChartRenderer
	cache    cache.AnalysisCache
}

func NewInventoryService(analyzer *analysis.Analyzer, renderer report.ChartRenderer, cacheImpl cache.AnalysisCache) *InventoryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	if renderer == nil {
		renderer = report.NewPNGRenderer()
	}
	return &InventoryService{
		analyzer: analyzer,
		renderer: renderer,
		cache:    cacheImpl,
	}
}

// Analyze classifies the table, computes order economics and renders both
// charts. Nothing is returned unless every step succeeds.
func (s *InventoryService) Analyze(ctx context.Context, items []domain.InventoryItem) (*domain.AnalysisReport, error) {
	cfg := s.analyzer.Config()

	if cached, ok, err := s.cache.GetReport(ctx, cfg, items); err == nil && ok {
		log.Debug().Str("analysis_id", cached.AnalysisID).Msg("inventory analysis: cache hit")
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("inventory analysis: cache get failed")
	}

	result, err := s.analyzer.Analyze(items)
	if err != nil {
		return nil, fmt.Errorf("analyze inventory: %w", err)
	}

	barChart, err := s.renderer.ClassDistribution(result.Summary)
	if err != nil {
		return nil, err
	}

	cumulativeChart, err := s.renderer.CumulativeCurve(result.Items, cfg.ClassABoundary, cfg.ClassBBoundary)
	if err != nil {
		return nil, err
	}

	rep := &domain.AnalysisReport{
		AnalysisID:      uuid.NewString(),
		Results:         result.Items,
		BarChart:        barChart,
		CumulativeChart: cumulativeChart,
		Summary:         result.Summary,
	}

	if err := s.cache.SetReport(ctx, cfg, items, rep); err != nil {
		log.Warn().Err(err).Msg("inventory analysis: cache set failed")
	}

	log.Info().
		Str("analysis_id", rep.AnalysisID).
		Int("total_items", rep.Summary.TotalItems).
		Int("a_items", rep.Summary.AItems).
		Int("b_items", rep.Summary.BItems).
		Int("c_items", rep.Summary.CItems).
		Float64("total_value", rep.Summary.TotalValue).
		Msg("inventory analysis completed")

	return rep, nil
}
