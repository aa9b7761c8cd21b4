// Package workflow provides a small dependency-graph runner: tasks declare
// the tasks they need, and Run executes everything that is ready
// concurrently, releasing a task only once all of its dependencies have
// completed. The first task error cancels the remaining branches.
package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is one node of the graph. Run receives the shared state; tasks that
// can run concurrently must confine their writes to their own part of it.
type Task[S any] struct {
	Name  string
	Needs []string
	Run   func(ctx context.Context, state S) error
}

// Graph is a set of tasks with declared dependencies.
type Graph[S any] struct {
	tasks []Task[S]
	index map[string]int
}

func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{index: make(map[string]int)}
}

// Add registers a task. Names must be unique and Run must be set.
func (g *Graph[S]) Add(t Task[S]) error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.Run == nil {
		return fmt.Errorf("task %s: run function is required", t.Name)
	}
	if _, exists := g.index[t.Name]; exists {
		return fmt.Errorf("task %s already registered", t.Name)
	}
	g.index[t.Name] = len(g.tasks)
	g.tasks = append(g.tasks, t)
	return nil
}

func (g *Graph[S]) Len() int {
	return len(g.tasks)
}

// Validate checks that every dependency exists and the graph is acyclic.
func (g *Graph[S]) Validate() error {
	indegree := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string, len(g.tasks))
	for _, t := range g.tasks {
		indegree[t.Name] = len(t.Needs)
		for _, need := range t.Needs {
			if _, ok := g.index[need]; !ok {
				return fmt.Errorf("task %s needs unknown task %s", t.Name, need)
			}
			dependents[need] = append(dependents[need], t.Name)
		}
	}

	// Kahn's algorithm; anything left over sits on a cycle.
	queue := make([]string, 0, len(g.tasks))
	for _, t := range g.tasks {
		if indegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}
	processed := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		processed++
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if processed != len(g.tasks) {
		return fmt.Errorf("dependency cycle detected")
	}
	return nil
}

// Run executes the graph against state. Every task whose dependencies have
// completed runs in its own goroutine; Run returns once all tasks finished,
// or with the first error after cancelling everything still in flight. A
// task never starts unless all of its dependencies succeeded, which is the
// join barrier fan-in stages rely on.
func (g *Graph[S]) Run(ctx context.Context, state S) error {
	if len(g.tasks) == 0 {
		return nil
	}
	if err := g.Validate(); err != nil {
		return err
	}

	waiting := make(map[string]int, len(g.tasks))
	dependents := make(map[string][]string, len(g.tasks))
	for _, t := range g.tasks {
		waiting[t.Name] = len(t.Needs)
		for _, need := range t.Needs {
			dependents[need] = append(dependents[need], t.Name)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	completed := make(chan string, len(g.tasks))

	start := func(name string) {
		t := g.tasks[g.index[name]]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.Run(ctx, state); err != nil {
				return fmt.Errorf("task %s: %w", t.Name, err)
			}
			select {
			case completed <- t.Name:
			case <-ctx.Done():
			}
			return nil
		})
	}

	for _, t := range g.tasks {
		if waiting[t.Name] == 0 {
			start(t.Name)
		}
	}

	eg.Go(func() error {
		for remaining := len(g.tasks); remaining > 0; {
			select {
			case name := <-completed:
				remaining--
				for _, dep := range dependents[name] {
					waiting[dep]--
					if waiting[dep] == 0 {
						start(dep)
					}
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return eg.Wait()
}
