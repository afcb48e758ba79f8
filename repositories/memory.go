package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"publicseva-be/apperrors"
	"publicseva-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps users and issues in process memory. It backs STORE_DRIVER=memory
// and the service and route tests; every read returns a copy.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[primitive.ObjectID]models.User
	emails map[string]primitive.ObjectID
	issues map[primitive.ObjectID]*memoryIssue
	seq    int64
}

type memoryIssue struct {
	issue models.Issue
	seq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[primitive.ObjectID]models.User),
		emails: make(map[string]primitive.ObjectID),
		issues: make(map[primitive.ObjectID]*memoryIssue),
	}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Issues returns the store as an IssueRepository.
func (s *MemoryStore) Issues() IssueRepository { return memoryIssues{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.emails[user.Email]; exists {
		return apperrors.Conflict("User already exists with this email")
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	user := r.s.users[id]
	return &user, nil
}

func (r memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return &user, nil
}

func (r memoryUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			u.Password = ""
			users[id] = u
		}
	}
	return users, nil
}

type memoryIssues struct{ s *MemoryStore }

func (r memoryIssues) Create(_ context.Context, issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	r.s.seq++
	r.s.issues[issue.ID] = &memoryIssue{issue: copyIssue(*issue), seq: r.s.seq}
	return nil
}

func (r memoryIssues) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.issues[id]
	if !ok {
		return nil, apperrors.NotFound("Issue not found")
	}
	issue := copyIssue(entry.issue)
	return &issue, nil
}

func (r memoryIssues) List(_ context.Context, filter IssueFilter) ([]models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := make([]*memoryIssue, 0, len(r.s.issues))
	for _, e := range r.s.issues {
		if filter.Status != "" && e.issue.Status != filter.Status {
			continue
		}
		if !filter.CreatedBy.IsZero() && e.issue.CreatedBy != filter.CreatedBy {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.issue.CreatedAt.Equal(b.issue.CreatedAt) {
			return a.issue.CreatedAt.After(b.issue.CreatedAt)
		}
		return a.seq > b.seq
	})

	issues := make([]models.Issue, 0, len(entries))
	for _, e := range entries {
		issues = append(issues, copyIssue(e.issue))
	}
	return issues, nil
}

func (r memoryIssues) Near(_ context.Context, point models.GeoPoint, maxDistance float64, limit int64) ([]models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type hit struct {
		issue    models.Issue
		distance float64
	}
	var hits []hit
	for _, e := range r.s.issues {
		if !e.issue.Location.Valid() {
			continue
		}
		d := models.DistanceMeters(point, e.issue.Location)
		if d <= maxDistance {
			hits = append(hits, hit{issue: e.issue, distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	issues := make([]models.Issue, 0, len(hits))
	for _, h := range hits {
		if limit > 0 && int64(len(issues)) >= limit {
			break
		}
		issues = append(issues, copyIssue(h.issue))
	}
	return issues, nil
}

func (r memoryIssues) AddVote(_ context.Context, id, userID primitive.ObjectID) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) error {
		if !issue.HasVoted(userID) {
			issue.Votes = append(issue.Votes, userID)
		}
		return nil
	})
}

func (r memoryIssues) RemoveVote(_ context.Context, id, userID primitive.ObjectID) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) error {
		votes := issue.Votes[:0]
		for _, v := range issue.Votes {
			if v != userID {
				votes = append(votes, v)
			}
		}
		issue.Votes = votes
		return nil
	})
}

func (r memoryIssues) AddComment(_ context.Context, id primitive.ObjectID, comment models.Comment) error {
	_, err := r.update(id, func(issue *models.Issue) error {
		issue.Comments = append(issue.Comments, comment)
		return nil
	})
	return err
}

func (r memoryIssues) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.IssueStatus) (*models.Issue, error) {
	issue, err := r.update(id, func(issue *models.Issue) error {
		if issue.Status != from {
			return ErrStatusChanged
		}
		issue.Status = to
		return nil
	})
	return issue, err
}

func (r memoryIssues) UpdateDetails(_ context.Context, id primitive.ObjectID, details IssueDetails) (*models.Issue, error) {
	return r.update(id, func(issue *models.Issue) error {
		if details.Title != nil {
			issue.Title = *details.Title
		}
		if details.Description != nil {
			issue.Description = *details.Description
		}
		return nil
	})
}

func (r memoryIssues) update(id primitive.ObjectID, mutate func(*models.Issue) error) (*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.issues[id]
	if !ok {
		return nil, apperrors.NotFound("Issue not found")
	}
	updated := copyIssue(entry.issue)
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now()
	entry.issue = updated

	out := copyIssue(updated)
	return &out, nil
}

func (r memoryIssues) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.issues[id]; !ok {
		return apperrors.NotFound("Issue not found")
	}
	delete(r.s.issues, id)
	return nil
}

func (r memoryIssues) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := newStatusCounts()
	for _, e := range r.s.issues {
		counts.ByStatus[e.issue.Status]++
		counts.Total++
	}
	return counts, nil
}

func copyIssue(issue models.Issue) models.Issue {
	issue.Images = append([]string(nil), issue.Images...)
	issue.Votes = append([]primitive.ObjectID(nil), issue.Votes...)
	issue.Comments = append([]models.Comment(nil), issue.Comments...)
	issue.Location.Coordinates = append([]float64(nil), issue.Location.Coordinates...)
	return issue
}
