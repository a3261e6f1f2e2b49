package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/vancomm/taskbingo-server/internal/bingo"
)

var (
	ErrNotArray        = errors.New("task list must be a JSON array")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrInvalidTask     = errors.New("invalid task")
)

// Catalog is the shared task list boards are generated from. It is safe for
// concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	tasks []bingo.Task
}

func New(tasks ...bingo.Task) *Catalog {
	return &Catalog{tasks: slices.Clone(tasks)}
}

// LoadFile reads a JSON array of tasks and appends it to the catalog.
func (c *Catalog) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("unable to read tasks file: %w", err)
	}
	return c.Import(data)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// List returns a copy of the tasks in catalog order.
func (c *Catalog) List() []bingo.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

func (c *Catalog) Add(task bingo.Task) (int, error) {
	task, err := normalize(task)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
	return len(c.tasks) - 1, nil
}

func (c *Catalog) Edit(index int, task bingo.Task) error {
	task, err := normalize(task)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.tasks) {
		return ErrIndexOutOfRange
	}
	c.tasks[index] = task
	return nil
}

func (c *Catalog) Delete(index int) (bingo.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.tasks) {
		return bingo.Task{}, ErrIndexOutOfRange
	}
	task := c.tasks[index]
	c.tasks = slices.Delete(c.tasks, index, index+1)
	return task, nil
}

// Import appends every task of a JSON array. Nothing is added when any
// entry is invalid.
func (c *Catalog) Import(data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrNotArray
	}
	var tasks []bingo.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	for i := range tasks {
		task, err := normalize(tasks[i])
		if err != nil {
			return 0, fmt.Errorf("task %d: %w", i, err)
		}
		tasks[i] = task
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, tasks...)
	return len(tasks), nil
}

func (c *Catalog) Export() ([]byte, error) {
	tasks := c.List()
	if tasks == nil {
		tasks = []bingo.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}

func normalize(task bingo.Task) (bingo.Task, error) {
	task.Name = strings.TrimSpace(task.Name)
	if task.Name == "" {
		return task, fmt.Errorf("%w: name must not be empty", ErrInvalidTask)
	}
	if task.Difficulty < 0 {
		return task, fmt.Errorf("%w: difficulty must not be negative", ErrInvalidTask)
	}
	task.Difficulty = min(task.Difficulty, bingo.MaxDifficultyTier)
	return task, nil
}
