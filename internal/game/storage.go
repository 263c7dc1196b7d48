package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/ecclesia-strategy/internal/types"
)

var ErrStudentNotFound = errors.New("student not found")

// StudentStore persists the student identities captured by onboarding.
// Records survive restarts; play sessions do not.
type StudentStore struct {
	mu       sync.RWMutex
	savePath string
	students map[string]*types.StudentSession
}

// NewStudentStore creates a store backed by the given JSON file, loading
// any existing records.
func NewStudentStore(savePath string) (*StudentStore, error) {
	store := &StudentStore{
		savePath: savePath,
		students: make(map[string]*types.StudentSession),
	}

	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (ss *StudentStore) load() error {
	if _, err := os.Stat(ss.savePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(ss.savePath)
	if err != nil {
		return fmt.Errorf("failed to read student store: %w", err)
	}

	var records []*types.StudentSession
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse student store: %w", err)
	}

	for _, record := range records {
		ss.students[record.ID] = record
	}
	return nil
}

// save writes all records to disk. Caller must hold the lock.
func (ss *StudentStore) save() error {
	dir := filepath.Dir(ss.savePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	records := ss.sortedLocked()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal student store: %w", err)
	}

	if err := os.WriteFile(ss.savePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write student store: %w", err)
	}
	return nil
}

// Register creates and persists a new student record. Name is required;
// email may be empty.
func (ss *StudentStore) Register(fullName, email string) (*types.StudentSession, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, errors.New("full name is required")
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	student := &types.StudentSession{
		ID:        uuid.New().String(),
		FullName:  fullName,
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now(),
	}
	ss.students[student.ID] = student

	if err := ss.save(); err != nil {
		delete(ss.students, student.ID)
		return nil, err
	}
	return student, nil
}

// Get retrieves a student record by ID.
func (ss *StudentStore) Get(id string) (*types.StudentSession, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	student, exists := ss.students[id]
	if !exists {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// List returns all student records ordered by creation time.
func (ss *StudentStore) List() []*types.StudentSession {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.sortedLocked()
}

func (ss *StudentStore) sortedLocked() []*types.StudentSession {
	records := make([]*types.StudentSession, 0, len(ss.students))
	for _, record := range ss.students {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records
}
