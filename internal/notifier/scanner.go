// Package notifier implements the daily due-scan: one snapshot read of
// every collection, four independent notification rules evaluated in
// memory, one notification write per (user, triggered rule).
package notifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// DefaultWorkers bounds the scan's worker pool when no count is configured.
const DefaultWorkers = 4

// defaultMilestones are the streak lengths that earn a congratulation.
// The check is exact-match: a streak that jumps past a milestone without
// landing on it earns nothing.
var defaultMilestones = []int{7, 14, 30, 60, 100}

// Pusher forwards a stored notification to an external delivery channel.
type Pusher interface {
	Push(ctx context.Context, user models.User, n models.Notification) error
}

// Config controls scan behavior.
type Config struct {
	// Workers is the size of the bounded pool processing users.
	Workers int
	// Milestones overrides the default streak milestone set.
	Milestones []int
	// Deduplicate skips a (user, rule) pair that already produced a
	// notification today. Off by default: once-per-day discipline
	// belongs to the external trigger, so a rerun emits duplicates.
	Deduplicate bool
	// Location resolves "today"; nil means UTC.
	Location *time.Location
}

// Scanner evaluates the daily notification rules against a full
// in-memory snapshot of the record store.
type Scanner struct {
	users         *database.UserRepository
	progress      *database.ProgressRepository
	cards         *database.CardRepository
	groups        *database.GroupRepository
	notifications *database.NotificationRepository
	pusher        Pusher
	log           *zap.Logger
	cfg           Config
}

// New creates a scanner over the given record store. pusher may be nil,
// in which case notifications are only written to the store.
func New(s store.Store, pusher Pusher, log *zap.Logger, cfg Config) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if len(cfg.Milestones) == 0 {
		cfg.Milestones = defaultMilestones
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scanner{
		users:         database.NewUserRepository(s),
		progress:      database.NewProgressRepository(s),
		cards:         database.NewCardRepository(s),
		groups:        database.NewGroupRepository(s),
		notifications: database.NewNotificationRepository(s),
		pusher:        pusher,
		log:           log,
		cfg:           cfg,
	}
}

// Result reports how many notifications a scan successfully created.
type Result struct {
	NotificationsCreated int `json:"notificationsSent"`
}

// snapshot is the immutable read of every base collection the rules need.
type snapshot struct {
	users          []models.User
	progressByUser map[string]models.Progress
	cardsByUser    map[string][]models.Card
	invitesByUser  map[string][]challengeInvite
	sentToday      map[string]struct{}
}

type challengeInvite struct {
	groupID   string
	groupName string
	challenge string
}

// RunDailyScan loads the snapshot, evaluates all four rules for every
// user and writes one notification per triggered rule. A failed write is
// logged and skipped; only a failed snapshot read aborts the scan.
func (s *Scanner) RunDailyScan(ctx context.Context, now time.Time) (Result, error) {
	snap, err := s.loadSnapshot(ctx, now)
	if err != nil {
		return Result{}, err
	}

	jobs := make(chan models.User)
	var created atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				for _, n := range s.evaluateUser(snap, user, now) {
					if s.persist(ctx, user, n, snap) {
						created.Add(1)
					}
				}
			}
		}()
	}

feed:
	for _, user := range snap.users {
		select {
		case jobs <- user:
		case <-ctx.Done():
			// Partial completion is acceptable; already-written
			// notifications remain valid.
			s.log.Warn("scan interrupted", zap.Error(ctx.Err()))
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result := Result{NotificationsCreated: int(created.Load())}
	s.log.Info("daily scan finished",
		zap.Int("users", len(snap.users)),
		zap.Int("notifications_created", result.NotificationsCreated),
	)
	return result, nil
}

// loadSnapshot reads every base collection once and indexes it by user.
func (s *Scanner) loadSnapshot(ctx context.Context, now time.Time) (*snapshot, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	progress, err := s.progress.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	cards, err := s.cards.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flashcards: %w", err)
	}
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	challenges, err := s.groups.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load group challenges: %w", err)
	}

	snap := &snapshot{
		users:          users,
		progressByUser: make(map[string]models.Progress, len(progress)),
		cardsByUser:    make(map[string][]models.Card),
		invitesByUser:  make(map[string][]challengeInvite),
	}
	for _, p := range progress {
		snap.progressByUser[p.UserID] = p
	}
	for _, c := range cards {
		snap.cardsByUser[c.UserID] = append(snap.cardsByUser[c.UserID], c)
	}

	groupsByID := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		groupsByID[g.ID] = g
	}
	today := dateOf(now, s.cfg.Location)
	for _, ch := range challenges {
		if !ch.IsActive || !dateOf(ch.StartDate, s.cfg.Location).Equal(today) {
			continue
		}
		group, ok := groupsByID[ch.GroupID]
		if !ok {
			s.log.Warn("challenge references unknown group",
				zap.String("challenge_id", ch.ID), zap.String("group_id", ch.GroupID))
			continue
		}
		invite := challengeInvite{groupID: group.ID, groupName: group.Name, challenge: ch.Title}
		for _, member := range group.Members {
			snap.invitesByUser[member] = append(snap.invitesByUser[member], invite)
		}
	}

	if s.cfg.Deduplicate {
		sent, err := s.notifications.ListCreatedSince(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("failed to load today's notifications: %w", err)
		}
		snap.sentToday = make(map[string]struct{}, len(sent))
		for _, n := range sent {
			snap.sentToday[dedupeKey(n.UserID, n.Type)] = struct{}{}
		}
	}
	return snap, nil
}

// evaluateUser applies the four independent rules; a user can collect
// zero to four notifications per run.
func (s *Scanner) evaluateUser(snap *snapshot, user models.User, now time.Time) []models.Notification {
	prefs := user.Preferences.Normalize()
	today := dateOf(now, s.cfg.Location)
	var out []models.Notification

	// Rule 1: due-review reminder.
	if prefs.DailyReview {
		due := 0
		for _, c := range snap.cardsByUser[user.ID] {
			if c.IsDue(now) {
				due++
			}
		}
		if due > 0 {
			out = append(out, reviewReminder(user.ID, due))
		}
	}

	// Rule 2: streak-break warning.
	if prefs.StreakWarning {
		if p, ok := snap.progressByUser[user.ID]; ok {
			if dateOf(p.LastLoginDate, s.cfg.Location).Before(today) {
				out = append(out, streakWarning(user.ID))
			}
		}
	}

	// Rule 3: new-group-challenge invite.
	if prefs.GroupChallenge {
		for _, invite := range snap.invitesByUser[user.ID] {
			out = append(out, challengeInviteNotification(user.ID, invite))
		}
	}

	// Rule 4: streak milestone, exact match only.
	if p, ok := snap.progressByUser[user.ID]; ok {
		for _, milestone := range s.cfg.Milestones {
			if p.ConsecutiveLoginDays == milestone {
				out = append(out, streakMilestone(user.ID, milestone))
				break
			}
		}
	}

	return out
}

// persist writes one notification; a transient store failure is logged
// and skipped so the rest of the batch proceeds.
func (s *Scanner) persist(ctx context.Context, user models.User, n models.Notification, snap *snapshot) bool {
	if snap.sentToday != nil {
		if _, dup := snap.sentToday[dedupeKey(n.UserID, n.Type)]; dup {
			return false
		}
	}

	stored, err := s.notifications.Create(ctx, n)
	if err != nil {
		s.log.Warn("failed to create notification",
			zap.String("user_id", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
		return false
	}

	if s.pusher != nil {
		if err := s.pusher.Push(ctx, user, *stored); err != nil {
			// Delivery is best effort; the stored record already counts.
			s.log.Warn("failed to push notification",
				zap.String("user_id", n.UserID),
				zap.String("type", string(n.Type)),
				zap.Error(err),
			)
		}
	}
	return true
}

func dedupeKey(userID string, t models.NotificationType) string {
	return userID + "|" + string(t)
}

// dateOf truncates a timestamp to its calendar date in the given location.
func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
