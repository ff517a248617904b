package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/airquality-advisor/pkg/errors"
	"github.com/yanqian/airquality-advisor/pkg/metrics"
)

// Service exposes the air quality dashboard actions.
type Service interface {
	Assess(ctx context.Context, req AssessRequest) (Report, error)
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
	StreamChat(ctx context.Context, req ChatRequest) (<-chan ChatChunk, error)
	Conditions() []HealthCondition
	Recent(ctx context.Context, limit int) ([]AssessmentRecord, error)
	Trending(ctx context.Context, limit int) ([]TrendingLocation, error)
	Report(ctx context.Context, id string) (Report, error)
}

type service struct {
	cfg       Config
	geocoder  Geocoder
	pollution PollutionClient
	advisor   *advisor
	history   HistoryRepository
	stats     LocationStats
	archive   ObjectStorage
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires up the air quality advisor domain.
func NewService(
	cfg Config,
	geocoder Geocoder,
	pollution PollutionClient,
	client ChatClient,
	counter TokenCounter,
	history HistoryRepository,
	stats LocationStats,
	archive ObjectStorage,
	logger *slog.Logger,
) Service {
	if cfg.GeocodeLimit <= 0 {
		cfg.GeocodeLimit = 1
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.TrendingSize <= 0 {
		cfg.TrendingSize = 10
	}
	logger = logger.With("component", "airquality.service")
	return &service{
		cfg:       cfg,
		geocoder:  geocoder,
		pollution: pollution,
		advisor:   &advisor{cfg: cfg, client: client, counter: counter, logger: logger},
		history:   history,
		stats:     stats,
		archive:   archive,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *service) Assess(ctx context.Context, req AssessRequest) (Report, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return Report{State: StateIdle, GeneratedAt: s.now().UTC()}, nil
	}
	condition, ok := ParseCondition(req.Condition)
	if !ok {
		return Report{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unsupported health condition %q", req.Condition), nil)
	}

	match, err := s.resolve(ctx, location)
	if err != nil {
		s.logger.Warn("location lookup failed", "location", location, "error", err)
		return Report{}, apperrors.Wrap("location_not_found", "Unable to fetch location coordinates.", err)
	}

	reading, err := s.pollution.CurrentPollution(ctx, match.Coordinates)
	metrics.ObserveUpstream("air_pollution", err)
	if err != nil {
		s.logger.Warn("air quality fetch failed", "location", location, "error", err)
		return Report{}, apperrors.Wrap("air_quality_unavailable", "Unable to fetch air quality data.", err)
	}

	category := Classify(reading.AQI)
	if !category.Known() {
		s.logger.Warn("aqi index outside documented range", "aqi", reading.AQI)
	}
	chart := BuildChart(reading)
	advice := s.advisor.composeAdvice(ctx, condition, reading)

	coords := match.Coordinates
	report := Report{
		ID:              s.newID(),
		State:           StateReady,
		Location:        location,
		ResolvedName:    match.Name,
		Country:         match.Country,
		Condition:       condition,
		Coordinates:     &coords,
		Reading:         &reading,
		Category:        category.Label(),
		Summary:         summaryLines(reading),
		Chart:           &chart,
		Advice:          advice.content,
		AdviceAvailable: advice.ok,
		Usage:           advice.usage,
		GeneratedAt:     s.now().UTC(),
	}
	metrics.ObserveAssessment(category.Label())
	s.logger.Info("air quality assessed", "location", location, "aqi", reading.AQI, "category", report.Category, "advice", advice.ok)

	s.record(ctx, report)
	return report, nil
}

// resolve returns the first geocoding match for the location. Empty results are an error.
func (s *service) resolve(ctx context.Context, location string) (Location, error) {
	matches, err := s.geocoder.Geocode(ctx, location, s.cfg.GeocodeLimit)
	if err == nil && len(matches) == 0 {
		err = errors.New("no geocoding results")
	}
	metrics.ObserveUpstream("geocode", err)
	if err != nil {
		return Location{}, err
	}
	return matches[0], nil
}

// record stores the side effects of a ready report. Failures are logged only.
func (s *service) record(ctx context.Context, report Report) {
	if s.history != nil {
		rec := AssessmentRecord{
			ID:        report.ID,
			Location:  firstNonEmpty(report.ResolvedName, report.Location),
			Country:   report.Country,
			Latitude:  report.Coordinates.Latitude,
			Longitude: report.Coordinates.Longitude,
			AQI:       report.Reading.AQI,
			Category:  report.Category,
			Condition: report.Condition,
			CreatedAt: report.GeneratedAt,
		}
		if err := s.history.Append(ctx, rec); err != nil {
			s.logger.Error("append assessment history failed", "id", report.ID, "error", err)
		}
	}
	if s.stats != nil {
		display := firstNonEmpty(report.ResolvedName, report.Location)
		if err := s.stats.Increment(ctx, canonicalLocation(display), display); err != nil {
			s.logger.Error("increment location stats failed", "location", display, "error", err)
		}
	}
	if s.archive != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			s.logger.Error("encode report failed", "id", report.ID, "error", err)
			return
		}
		if _, err := s.archive.Put(ctx, reportKey(report.ID), payload, "application/json"); err != nil {
			s.logger.Error("archive report failed", "id", report.ID, "error", err)
		}
	}
}

func (s *service) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return ChatReply{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}
	out := s.advisor.respond(ctx, question)
	return ChatReply{
		Question:  question,
		Answer:    out.content,
		Available: out.ok,
		Usage:     out.usage,
	}, nil
}

func (s *service) StreamChat(ctx context.Context, req ChatRequest) (<-chan ChatChunk, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}
	return s.advisor.stream(ctx, question), nil
}

func (s *service) Conditions() []HealthCondition {
	return Conditions()
}

func (s *service) Recent(ctx context.Context, limit int) ([]AssessmentRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	records, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap("history_error", "failed to load assessment history", err)
	}
	return records, nil
}

func (s *service) Trending(ctx context.Context, limit int) ([]TrendingLocation, error) {
	if s.stats == nil {
		return nil, nil
	}
	if limit <= 0 || limit > s.cfg.TrendingSize {
		limit = s.cfg.TrendingSize
	}
	items, err := s.stats.Top(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap("history_error", "failed to load trending locations", err)
	}
	return items, nil
}

func (s *service) Report(ctx context.Context, id string) (Report, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Report{}, apperrors.Wrap("invalid_input", "report id must be a UUID", err)
	}
	if s.archive == nil {
		return Report{}, apperrors.Wrap("report_not_found", "report archive is disabled", nil)
	}
	payload, err := s.archive.Get(ctx, reportKey(parsed.String()))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return Report{}, apperrors.Wrap("report_not_found", "report not found", err)
		}
		return Report{}, apperrors.Wrap("history_error", "failed to load report", err)
	}
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return Report{}, apperrors.Wrap("history_error", "stored report malformed", err)
	}
	return report, nil
}

func reportKey(id string) string {
	return "reports/" + id + ".json"
}

func canonicalLocation(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
