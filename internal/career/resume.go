package career

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/careercoach/internal/blob"
	"github.com/kiranshivaraju/careercoach/internal/document"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/resultcache"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// maxDocumentBytes bounds the base64 payload of an uploaded resume.
const maxDocumentBytes = 10 << 20

type AnalyzeParams struct {
	OwnerID    string
	TargetRole string
	Text       string
	File       *models.Document
}

type AnalyzeResult struct {
	Analysis models.ResumeAnalysis `json:"analysis"`
	Cached   bool                  `json:"cached"`
	Outcome  resultcache.Outcome   `json:"outcome"`
}

// LatestResume is the most recent stored analysis for an owner.
type LatestResume struct {
	Analysis   models.ResumeAnalysis `json:"analysis"`
	TargetRole string                `json:"target_role"`
	Source     string                `json:"source"`
	AnalyzedAt time.Time             `json:"analyzed_at"`
}

type ResumeService struct {
	ai     models.AIProvider
	cache  *resultcache.Cache
	store  store.Store
	blob   blob.Store
	events events.Publisher
}

func NewResumeService(provider models.AIProvider, rc *resultcache.Cache, st store.Store, bs blob.Store, pub events.Publisher) *ResumeService {
	if bs == nil {
		bs = blob.Noop{}
	}
	if pub == nil {
		pub = events.Noop{}
	}
	return &ResumeService{ai: provider, cache: rc, store: st, blob: bs, events: pub}
}

// Analyze scores a resume against a target role. Authenticated owners are
// served from the result cache when the same content was analyzed for the same
// role before; guests always get a fresh analysis that is never stored.
func (s *ResumeService) Analyze(ctx context.Context, p AnalyzeParams) (*AnalyzeResult, error) {
	role := strings.TrimSpace(p.TargetRole)
	if role == "" {
		return nil, invalid("target_role", "is required")
	}
	content, source, err := resumeContent(p)
	if err != nil {
		return nil, err
	}

	input := models.ResumeInput{Text: p.Text, Document: p.File}
	compute := func(ctx context.Context) ([]byte, error) {
		analysis, err := s.ai.AnalyzeResume(ctx, input, p.TargetRole)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis)
	}

	// The role is hashed exactly as submitted, like the content.
	owner := ownerOrGuest(p.OwnerID)
	var res *resultcache.Result
	if isGuest(owner) {
		payload, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		res = &resultcache.Result{Payload: payload, Outcome: resultcache.OutcomeBypass}
	} else {
		res, err = s.cache.Resolve(ctx, resultcache.Request{
			OwnerID:      owner,
			Content:      content,
			ContextParam: p.TargetRole,
			Source:       source,
		}, compute)
		if err != nil {
			return nil, err
		}
	}

	var analysis models.ResumeAnalysis
	if err := json.Unmarshal(res.Payload, &analysis); err != nil {
		return nil, fmt.Errorf("decode stored analysis: %w", err)
	}

	if !isGuest(owner) {
		s.afterAnalysis(ctx, owner, role, p.File, res, analysis)
	}

	return &AnalyzeResult{
		Analysis: analysis,
		Cached:   res.Outcome == resultcache.OutcomeHit,
		Outcome:  res.Outcome,
	}, nil
}

// afterAnalysis applies side effects that must never fail the request.
func (s *ResumeService) afterAnalysis(ctx context.Context, owner, role string, file *models.Document, res *resultcache.Result, analysis models.ResumeAnalysis) {
	log := slog.With("owner_id", owner)

	if id, ok := profileID(owner); ok {
		_, err := s.store.UpdateProfile(ctx, id,
			store.WithTargetRole(role),
			store.WithSkills(normalizeSkills(analysis.ExtractedSkills)))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn("update profile after analysis failed", "error", err)
		}
	}

	if file != nil && res.Outcome == resultcache.OutcomeMiss {
		data, err := base64.StdEncoding.DecodeString(file.Data)
		if err == nil {
			key := blob.ResumeKey(owner, res.Key.String(), file.Name)
			if _, err := s.blob.Put(ctx, key, file.MIMEType, data); err != nil {
				log.Warn("archive resume document failed", "error", err)
			}
		}
	}

	events.PublishAsync(ctx, s.events, events.Event{
		Type:    events.ResumeAnalyzed,
		OwnerID: owner,
		Data: map[string]any{
			"target_role": role,
			"ats_score":   analysis.ATSScore,
			"cached":      res.Outcome == resultcache.OutcomeHit,
		},
	})
}

// Latest returns the newest stored analysis for owner.
func (s *ResumeService) Latest(ctx context.Context, ownerID string) (*LatestResume, error) {
	if isGuest(ownerID) {
		return nil, ErrGuestNotAllowed
	}
	entry, err := s.store.GetLatestResume(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var analysis models.ResumeAnalysis
	if err := json.Unmarshal(entry.Payload, &analysis); err != nil {
		return nil, fmt.Errorf("decode stored analysis: %w", err)
	}
	return &LatestResume{
		Analysis:   analysis,
		TargetRole: entry.ContextParam,
		Source:     entry.Source,
		AnalyzedAt: entry.CreatedAt,
	}, nil
}

// resumeContent picks the bytes that identify the resume for caching and the
// label stored alongside it. Pasted text is hashed as is; an upload is hashed
// over its base64 payload string as submitted.
func resumeContent(p AnalyzeParams) ([]byte, string, error) {
	hasText := strings.TrimSpace(p.Text) != ""
	hasFile := p.File != nil

	switch {
	case hasText && hasFile:
		return nil, "", invalid("resume", "provide either text or file, not both")
	case hasText:
		return []byte(p.Text), p.Text, nil
	case hasFile:
		if p.File.Data == "" {
			return nil, "", invalid("file.data", "is required")
		}
		if len(p.File.Data) > maxDocumentBytes {
			return nil, "", invalid("file.data", "exceeds 10 MiB")
		}
		if !document.Supported(p.File.MIMEType) {
			return nil, "", invalid("file.mime_type", fmt.Sprintf("unsupported type %q", p.File.MIMEType))
		}
		if _, err := base64.StdEncoding.DecodeString(p.File.Data); err != nil {
			return nil, "", invalid("file.data", "must be base64 encoded")
		}
		return []byte(p.File.Data), uploadLabel(p.File.MIMEType) + ": " + p.File.Name, nil
	default:
		return nil, "", invalid("resume", "provide resume text or a file")
	}
}

func uploadLabel(mime string) string {
	switch mime {
	case document.MIMEPDF:
		return "PDF Upload"
	case document.MIMEDocx:
		return "DOCX Upload"
	default:
		return "Text Upload"
	}
}
