package footprint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/carbonlens/pkg/errors"
	"github.com/yanqian/carbonlens/pkg/util"
)

const maxDisplayNameLen = 32

// Config wires runtime settings for the analyze workflow.
type Config struct {
	CollaboratorTimeout time.Duration
}

// AnalyzeRequest is one lifestyle submission. Profile, when set, replaces the inline input.
type AnalyzeRequest struct {
	InputForm
	Profile     string `json:"profile,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UserID      *int64 `json:"-"`
}

// AnalyzeResponse is the engine result plus best-effort collaborator outcomes.
type AnalyzeResponse struct {
	Inputs LifestyleInput `json:"inputs"`
	Result
	Rating      string      `json:"rating"`
	Equivalents Equivalents `json:"equivalents"`
	RunID       string      `json:"runId,omitempty"`
	ReportKey   string      `json:"reportKey,omitempty"`
	Notices     []Notice    `json:"notices,omitempty"`
}

// SimulateRequest selects either a named preset or explicit levers.
type SimulateRequest struct {
	InputForm
	Profile string  `json:"profile,omitempty"`
	Preset  string  `json:"preset,omitempty"`
	Levers  *Levers `json:"levers,omitempty"`
}

// ProfileView is a demo household with its engine outcome.
type ProfileView struct {
	Profile
	TotalKg float64 `json:"totalKg"`
	Score   int     `json:"score"`
	Rating  string  `json:"rating"`
}

// Service exposes the footprint workflows.
type Service interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error)
	Simulate(ctx context.Context, req SimulateRequest) (Simulation, error)
	Profiles(ctx context.Context) []ProfileView
}

type service struct {
	cfg     Config
	runs    RunRepository
	archive ReportArchive
	logger  *slog.Logger
	now     util.Clock
	newID   func() string
	anonTag func() int
}

// NewService wires the footprint domain. archive may be nil.
func NewService(cfg Config, runs RunRepository, archive ReportArchive, logger *slog.Logger) Service {
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = 3 * time.Second
	}
	return &service{
		cfg:     cfg,
		runs:    runs,
		archive: archive,
		logger:  logger.With("component", "footprint.service"),
		now:     util.NowUTC,
		newID:   uuid.NewString,
		anonTag: func() int { return 1000 + rand.IntN(9000) },
	}
}

func (s *service) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	in, err := resolveInput(req.InputForm, req.Profile)
	if err != nil {
		return AnalyzeResponse{}, err
	}
	if err := Validate(in); err != nil {
		return AnalyzeResponse{}, err
	}

	result := Compute(in)
	resp := AnalyzeResponse{
		Inputs:      in,
		Result:      result.Rounded(),
		Rating:      Rating(result.Score),
		Equivalents: ComputeEquivalents(result.Totals.Total),
	}

	run := Run{
		ID:          s.newID(),
		UserID:      req.UserID,
		DisplayName: s.displayName(req.DisplayName),
		Input:       in,
		Totals:      result.Totals,
		Score:       result.Score,
		CreatedAt:   s.now(),
	}
	s.recordSideEffects(ctx, run, &resp)
	s.logger.Info("footprint analyzed", "total_kg", resp.Totals.Total, "score", resp.Score, "run_id", resp.RunID, "notices", len(resp.Notices))
	return resp, nil
}

// recordSideEffects persists and archives the run concurrently. Failures only add notices.
func (s *service) recordSideEffects(ctx context.Context, run Run, resp *AnalyzeResponse) {
	// A client hanging up should not abandon a run that was already computed.
	base := context.WithoutCancel(ctx)
	snapshot := *resp
	var (
		g             errgroup.Group
		runID         string
		storedKey     string
		saveNotice    *Notice
		archiveNotice *Notice
	)

	if s.runs != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(base, s.cfg.CollaboratorTimeout)
			defer cancel()
			id, err := s.runs.SaveRun(callCtx, run)
			if err != nil {
				s.logger.Warn("run persistence unavailable", "run_id", run.ID, "error", err)
				saveNotice = &Notice{Code: apperrors.CodePersistence, Message: "Your result was calculated but could not be saved to the leaderboard."}
				return nil
			}
			runID = id
			return nil
		})
	}

	if s.archive != nil {
		g.Go(func() error {
			payload, err := json.Marshal(snapshot)
			if err != nil {
				archiveNotice = &Notice{Code: apperrors.CodeArchive, Message: "Report archive skipped."}
				return nil
			}
			callCtx, cancel := context.WithTimeout(base, s.cfg.CollaboratorTimeout)
			defer cancel()
			stored, err := s.archive.Put(callCtx, reportKey(run), payload, "application/json")
			if err != nil {
				s.logger.Warn("report archive unavailable", "run_id", run.ID, "error", err)
				archiveNotice = &Notice{Code: apperrors.CodeArchive, Message: "Your report could not be archived."}
				return nil
			}
			storedKey = stored.Key
			return nil
		})
	}

	_ = g.Wait()
	resp.RunID = runID
	resp.ReportKey = storedKey
	for _, n := range []*Notice{saveNotice, archiveNotice} {
		if n != nil {
			resp.Notices = append(resp.Notices, *n)
		}
	}
}

func (s *service) Simulate(_ context.Context, req SimulateRequest) (Simulation, error) {
	in, err := resolveInput(req.InputForm, req.Profile)
	if err != nil {
		return Simulation{}, err
	}
	if err := Validate(in); err != nil {
		return Simulation{}, err
	}
	var levers Levers
	switch {
	case strings.TrimSpace(req.Preset) != "":
		preset, ok := Preset(strings.TrimSpace(req.Preset))
		if !ok {
			return Simulation{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("unknown preset %q, expected one of %s", req.Preset, strings.Join(PresetNames(), ", ")), nil)
		}
		levers = preset
	case req.Levers != nil:
		levers = *req.Levers
	default:
		return Simulation{}, apperrors.Wrap(apperrors.CodeInvalidInput, "either preset or levers is required", nil)
	}
	return Simulate(in, levers), nil
}

func (s *service) Profiles(_ context.Context) []ProfileView {
	profiles := Profiles()
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		result := Compute(p.Input)
		views = append(views, ProfileView{
			Profile: p,
			TotalKg: round1(result.Totals.Total),
			Score:   result.Score,
			Rating:  Rating(result.Score),
		})
	}
	return views
}

func resolveInput(form InputForm, profile string) (LifestyleInput, error) {
	slug := strings.TrimSpace(profile)
	if slug == "" {
		return form.Resolve(), nil
	}
	p, ok := LookupProfile(slug)
	if !ok {
		return LifestyleInput{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown profile %q", slug), nil)
	}
	return p.Input, nil
}

func (s *service) displayName(requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		return fmt.Sprintf("Anonymous #%04d", s.anonTag())
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		name = string([]rune(name)[:maxDisplayNameLen])
	}
	return name
}

func reportKey(run Run) string {
	return fmt.Sprintf("runs/%s/%s.json", run.CreatedAt.UTC().Format("2006/01/02"), run.ID)
}
