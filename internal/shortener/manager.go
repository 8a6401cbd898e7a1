package shortener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaxBatchSize caps how many submissions CreateBatch accepts at once.
const MaxBatchSize = 5

// DefaultMaxCodeAttempts bounds regeneration when a generated code is already taken.
const DefaultMaxCodeAttempts = 5

// Manager owns the lifecycle of short links: allocation, expiry and click tracking.
//
// Every mutation reads the whole collection, changes it and writes it back. The mutex keeps
// those sequences from interleaving inside one process; separate processes sharing a slot
// still overwrite each other (last writer wins).
type Manager struct {
	mu              sync.Mutex
	collection      Collection
	generateCode    CodeGenerator
	now             Clock
	notify          Notify
	logger          *zap.Logger
	validate        *validator.Validate
	defaultValidity time.Duration
	maxAttempts     int
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for creation and expiry checks.
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		m.now = clock
	}
}

// WithNotify sets the activity sink.
func WithNotify(notify Notify) Option {
	return func(m *Manager) {
		m.notify = notify
	}
}

// WithDefaultValidity overrides the validity applied when a submission has none.
func WithDefaultValidity(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultValidity = d
		}
	}
}

// WithMaxCodeAttempts sets how many generated codes are tried before giving up.
func WithMaxCodeAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// NewManager creates a lifecycle manager over the given collection.
func NewManager(collection Collection, generator CodeGenerator, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		collection:      collection,
		generateCode:    generator,
		now:             time.Now,
		notify:          func(*Activity) error { return nil },
		logger:          logger,
		validate:        newValidator(),
		defaultValidity: DefaultValidity,
		maxAttempts:     DefaultMaxCodeAttempts,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Validate checks a submission without creating anything. The returned error is only set when
// the collection could not be read for the collision check.
func (m *Manager) Validate(ctx context.Context, sub Submission) (Violations, error) {
	var out outbox
	defer m.deliver(&out)

	violations := checkFormat(m.validate, &sub)

	if !m.needsCollisionCheck(sub, violations) {
		return violations, nil
	}

	links, err := m.load(ctx, &out)
	if err != nil {
		return nil, err
	}

	m.checkCollision(sub, links, violations)

	return violations, nil
}

// Create validates the submission, allocates a code and appends the new link to the collection.
// Format violations are reported even when the collection cannot be read.
func (m *Manager) Create(ctx context.Context, sub Submission) (*Link, error) {
	var out outbox
	defer m.deliver(&out)

	m.mu.Lock()
	defer m.mu.Unlock()

	violations := checkFormat(m.validate, &sub)

	var links []Link

	if len(violations) == 0 || m.needsCollisionCheck(sub, violations) {
		var err error

		links, err = m.load(ctx, &out)
		if err != nil && len(violations) == 0 {
			return nil, err
		}

		if err == nil && m.needsCollisionCheck(sub, violations) {
			m.checkCollision(sub, links, violations)
		}
	}

	if len(violations) > 0 {
		m.logger.Info("submission rejected",
			zap.String("originalUrl", sub.OriginalURL),
			zap.Strings("fields", violations.Fields()),
		)
		out.add(m.activity(KindValidationFailed, "Form validation failed", LevelWarn, map[string]any{
			"originalUrl": sub.OriginalURL,
			"errors":      violations.Messages(),
		}))

		return nil, &ValidationError{Violations: violations}
	}

	code, err := m.allocate(sub, links)
	if err != nil {
		return nil, err
	}

	createdAt := m.now().UTC()
	link := Link{
		OriginalURL: sub.OriginalURL,
		ShortCode:   code,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(sub.Validity(m.defaultValidity)),
		Clicks:      0,
		ClickData:   []Click{},
	}

	if err = m.save(ctx, append(links, link), &out); err != nil {
		return nil, err
	}

	m.logger.Info("short link created",
		zap.String("code", string(code)),
		zap.String("originalUrl", link.OriginalURL),
		zap.Time("expiresAt", link.ExpiresAt),
	)
	out.add(m.activity(KindLinkCreated, "URL shortened successfully", LevelInfo, map[string]any{
		"shortCode":   string(code),
		"originalUrl": link.OriginalURL,
		"expiresAt":   link.ExpiresAt,
	}))

	return link.clone(), nil
}

// BatchResult is the outcome of one submission in a batch.
type BatchResult struct {
	Link *Link
	Err  error
}

// CreateBatch creates each submission in order; later submissions see codes taken by earlier ones.
// Rejected submissions are reported per item. Any other failure stops the batch: the failing
// item carries the error, the remaining items carry ErrBatchAborted and the error is also
// returned. Links created before the failure stay persisted and are reported in the results.
func (m *Manager) CreateBatch(ctx context.Context, subs []Submission) ([]BatchResult, error) {
	if len(subs) == 0 {
		return nil, ErrEmptyBatch
	}

	if len(subs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d submissions, maximum %d", ErrBatchTooLarge, len(subs), MaxBatchSize)
	}

	results := make([]BatchResult, len(subs))
	for i, sub := range subs {
		link, err := m.Create(ctx, sub)
		results[i] = BatchResult{Link: link, Err: err}

		var vErr *ValidationError
		if err == nil || errors.As(err, &vErr) {
			continue
		}

		for j := i + 1; j < len(subs); j++ {
			results[j].Err = ErrBatchAborted
		}

		m.logger.Warn("batch aborted",
			zap.Int("item", i),
			zap.Int("size", len(subs)),
			zap.Error(err),
		)

		return results, fmt.Errorf("create batch item %d: %w", i, err)
	}

	return results, nil
}

// Resolve looks up an active link, records a click for the visit and returns the updated link.
// Unknown and expired codes fail without writing to the collection.
func (m *Manager) Resolve(ctx context.Context, code Code, visit Visit) (*Link, error) {
	var out outbox
	defer m.deliver(&out)

	m.mu.Lock()
	defer m.mu.Unlock()

	link, err := m.appendClick(ctx, code, func(now time.Time) Click { return NewClick(now, visit) }, &out)

	switch {
	case errors.Is(err, ErrNotFound):
		m.logger.Info("redirect failed, code not found", zap.String("code", string(code)))
		out.add(m.activity(KindLinkNotFound, "Redirect failed - URL not found", LevelWarn, map[string]any{
			"shortCode": string(code),
		}))

		return nil, fmt.Errorf("resolve %q: %w", code, err)
	case errors.Is(err, ErrExpired):
		m.logger.Info("redirect failed, link expired",
			zap.String("code", string(code)),
			zap.Time("expiresAt", link.ExpiresAt),
		)
		out.add(m.activity(KindLinkExpired, "Redirect failed - URL expired", LevelWarn, map[string]any{
			"shortCode": string(code),
			"expiresAt": link.ExpiresAt,
		}))

		return nil, fmt.Errorf("resolve %q: %w", code, err)
	case err != nil:
		return nil, err
	}

	out.add(m.activity(KindLinkResolved, "Redirect successful", LevelInfo, map[string]any{
		"shortCode":   string(code),
		"originalUrl": link.OriginalURL,
		"clicks":      link.Clicks,
	}))

	return link, nil
}

// RecordClick appends a click to an active link. A code that no longer exists is ignored.
func (m *Manager) RecordClick(ctx context.Context, code Code, click Click) error {
	var out outbox
	defer m.deliver(&out)

	m.mu.Lock()
	defer m.mu.Unlock()

	link, err := m.appendClick(ctx, code, func(now time.Time) Click {
		at := click.Timestamp
		if at.IsZero() {
			at = now
		}

		return NewClick(at, Visit{Referrer: click.Referrer, Device: click.Device, Country: click.Country})
	}, &out)

	switch {
	case errors.Is(err, ErrNotFound):
		m.logger.Debug("click ignored, code not found", zap.String("code", string(code)))

		return nil
	case errors.Is(err, ErrExpired):
		return fmt.Errorf("record click %q: %w", code, err)
	case err != nil:
		return err
	}

	out.add(m.activity(KindClickRecorded, "Click recorded", LevelInfo, map[string]any{
		"shortCode": string(code),
		"clicks":    link.Clicks,
	}))

	return nil
}

// appendClick adds the click built by newClick to an active link and persists the collection.
// For an expired link it returns the stored link alongside ErrExpired. Callers hold m.mu.
func (m *Manager) appendClick(ctx context.Context, code Code, newClick func(time.Time) Click, out *outbox) (*Link, error) {
	links, err := m.load(ctx, out)
	if err != nil {
		return nil, err
	}

	i := indexOf(links, code)
	if i < 0 {
		return nil, ErrNotFound
	}

	now := m.now().UTC()
	if links[i].IsExpired(now) {
		return links[i].clone(), ErrExpired
	}

	links[i].recordClick(newClick(now))

	if err = m.save(ctx, links, out); err != nil {
		return nil, err
	}

	return links[i].clone(), nil
}

// Get returns a link by code regardless of its state.
func (m *Manager) Get(ctx context.Context, code Code) (*Link, error) {
	var out outbox
	defer m.deliver(&out)

	links, err := m.load(ctx, &out)
	if err != nil {
		return nil, err
	}

	i := indexOf(links, code)
	if i < 0 {
		return nil, fmt.Errorf("get %q: %w", code, ErrNotFound)
	}

	return links[i].clone(), nil
}

// List returns every stored link in creation order.
func (m *Manager) List(ctx context.Context) ([]Link, error) {
	var out outbox
	defer m.deliver(&out)

	return m.load(ctx, &out)
}

// PurgeExpired drops expired links from the collection and returns how many were removed.
// Nothing is written when no link has expired.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	var out outbox
	defer m.deliver(&out)

	m.mu.Lock()
	defer m.mu.Unlock()

	links, err := m.load(ctx, &out)
	if err != nil {
		return 0, err
	}

	now := m.now().UTC()
	kept := make([]Link, 0, len(links))

	for _, link := range links {
		if !link.IsExpired(now) {
			kept = append(kept, link)
		}
	}

	removed := len(links) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err = m.save(ctx, kept, &out); err != nil {
		return 0, err
	}

	m.logger.Info("expired links purged", zap.Int("removed", removed), zap.Int("remaining", len(kept)))
	out.add(m.activity(KindLinksPurged, "Expired links purged", LevelInfo, map[string]any{
		"removed":   removed,
		"remaining": len(kept),
	}))

	return removed, nil
}

// Now exposes the manager clock so callers can evaluate link state consistently.
func (m *Manager) Now() time.Time {
	return m.now().UTC()
}

func (m *Manager) needsCollisionCheck(sub Submission, violations Violations) bool {
	if sub.CustomCode == "" {
		return false
	}

	_, bad := violations[FieldCustomCode]

	return !bad
}

func (m *Manager) checkCollision(sub Submission, links []Link, violations Violations) {
	if indexOf(links, Code(sub.CustomCode)) >= 0 {
		violations[FieldCustomCode] = fmt.Errorf("%w: this short code is already in use", ErrCodeCollision)
	}
}

// allocate picks the effective code. Generated codes are checked against the collection and
// regenerated on collision, up to maxAttempts.
func (m *Manager) allocate(sub Submission, links []Link) (Code, error) {
	if sub.CustomCode != "" {
		return Code(sub.CustomCode), nil
	}

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		code := Code(m.generateCode())
		if indexOf(links, code) < 0 {
			return code, nil
		}

		m.logger.Debug("generated code already taken",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	return "", fmt.Errorf("%w: no free code after %d attempts", ErrCodeCollision, m.maxAttempts)
}

func (m *Manager) load(ctx context.Context, out *outbox) ([]Link, error) {
	links, err := m.collection.Load(ctx)
	if err != nil {
		m.storageFailed("load", err, out)

		return nil, fmt.Errorf("%w: load collection: %w", ErrStorageUnavailable, err)
	}

	return links, nil
}

func (m *Manager) save(ctx context.Context, links []Link, out *outbox) error {
	if err := m.collection.Save(ctx, links); err != nil {
		m.storageFailed("save", err, out)

		return fmt.Errorf("%w: save collection: %w", ErrStorageUnavailable, err)
	}

	return nil
}

func (m *Manager) storageFailed(op string, err error, out *outbox) {
	m.logger.Error("collection "+op+" failed", zap.Error(err))
	out.add(m.activity(KindStorageFailed, "Storage "+op+" failed", LevelError, map[string]any{
		"operation": op,
		"error":     err.Error(),
	}))
}

// outbox holds the activities of one operation until the mutex is released.
type outbox struct {
	activities []*Activity
}

func (o *outbox) add(a *Activity) {
	o.activities = append(o.activities, a)
}

func (m *Manager) activity(kind, message, level string, data map[string]any) *Activity {
	return &Activity{
		Timestamp: m.now().UTC(),
		Kind:      kind,
		Message:   message,
		Level:     level,
		Data:      data,
	}
}

// deliver hands the collected activities to notify. It must run after m.mu is unlocked.
func (m *Manager) deliver(out *outbox) {
	for _, a := range out.activities {
		if err := m.notify(a); err != nil {
			m.logger.Warn("failed to deliver activity",
				zap.String("kind", a.Kind),
				zap.Error(err),
			)
		}
	}
}
