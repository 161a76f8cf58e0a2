package share

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jotjot/internal/domain"
	"jotjot/internal/idgen"
	"jotjot/internal/metrics"
	"jotjot/internal/storage"
)

// MaxAllocAttempts bounds how many identifiers Create draws when the store
// reports that a freshly generated key is already taken.
const MaxAllocAttempts = 3

// User-visible messages.
const (
	MsgContentRequired = "Content is required"
	MsgCreateFailed    = "Failed to create share"
	MsgNotFound        = "Content not found"
	MsgFetchFailed     = "Failed to fetch content"
)

// Result is returned to the author after a successful share.
type Result struct {
	ID        string    `json:"id"`
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service creates and retrieves shared notes.
type Service struct {
	store   storage.ContentStore
	ids     idgen.Generator
	baseURL string
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a share service. baseURL is the public origin used to
// build share links; a trailing slash is ignored.
func NewService(store storage.ContentStore, ids idgen.Generator, baseURL string, logger logrus.FieldLogger) *Service {
	return &Service{
		store:   store,
		ids:     ids,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     logger.WithField("component", "share_service"),
		now:     time.Now,
	}
}

// ShareURL returns the public link for id.
func (s *Service) ShareURL(id string) string {
	return s.baseURL + "/s/" + id
}

// Create stores content under a new identifier for domain.ShareTTL.
//
// Empty or whitespace-only content fails with domain.ErrValidation. A store
// failure fails with domain.ErrInternal and is not retried; only a key
// collision makes Create draw another identifier.
func (s *Service) Create(ctx context.Context, content string) (Result, error) {
	if strings.TrimSpace(content) == "" {
		metrics.SharesCreated.WithLabelValues(metrics.ResultValidationError).Inc()
		return Result{}, domain.Validation(MsgContentRequired)
	}

	for attempt := 1; attempt <= MaxAllocAttempts; attempt++ {
		id, err := s.ids.NewID()
		if err != nil {
			s.log.WithError(err).Error("Failed to generate share id")
			metrics.SharesCreated.WithLabelValues(metrics.ResultError).Inc()
			return Result{}, domain.Internal(MsgCreateFailed, err)
		}

		log := s.log.WithFields(logrus.Fields{
			"id":      id,
			"attempt": attempt,
			"bytes":   len(content),
		})

		rec := domain.NewShare(id, content, s.now())
		err = s.store.Create(ctx, rec.ID, rec.Content, domain.ShareTTL)
		if errors.Is(err, domain.ErrConflict) {
			metrics.IDCollisions.Inc()
			log.Warn("Generated id already in use, drawing another")
			continue
		}
		if err != nil {
			log.WithError(err).Error("Error creating share")
			metrics.SharesCreated.WithLabelValues(metrics.ResultError).Inc()
			return Result{}, domain.Internal(MsgCreateFailed, err)
		}

		log.WithField("expires_at", rec.ExpiresAt).Info("Share created")
		metrics.SharesCreated.WithLabelValues(metrics.ResultOK).Inc()
		return Result{ID: rec.ID, ShareURL: s.ShareURL(rec.ID), ExpiresAt: rec.ExpiresAt}, nil
	}

	s.log.WithField("attempts", MaxAllocAttempts).Error("Could not allocate a free share id")
	metrics.SharesCreated.WithLabelValues(metrics.ResultError).Inc()
	return Result{}, domain.Internal(MsgCreateFailed, domain.ErrConflict)
}

// Get returns the content stored under id verbatim.
//
// Missing and expired shares fail with domain.ErrNotFound; store failures
// fail with domain.ErrInternal.
func (s *Service) Get(ctx context.Context, id string) (string, error) {
	if !idgen.Valid(id) {
		metrics.ShareLookups.WithLabelValues(metrics.ResultNotFound).Inc()
		return "", domain.NotFound(MsgNotFound)
	}

	content, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.WithField("id", id).Debug("Share not found")
		metrics.ShareLookups.WithLabelValues(metrics.ResultNotFound).Inc()
		return "", domain.NotFound(MsgNotFound)
	}
	if err != nil {
		s.log.WithError(err).WithField("id", id).Error("Error fetching share")
		metrics.ShareLookups.WithLabelValues(metrics.ResultError).Inc()
		return "", domain.Internal(MsgFetchFailed, err)
	}

	metrics.ShareLookups.WithLabelValues(metrics.ResultOK).Inc()
	return content, nil
}
