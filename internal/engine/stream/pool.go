package stream

import (
	"sync"

	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// MeshFunc produces the mesh for a chunk. Workers run it to completion;
// it must be safe for concurrent calls.
type MeshFunc func(pos voxel.ChunkPos) mesh.Buffer

// Result is a finished generation task, consumed only by the manager's
// control goroutine.
type Result struct {
	Pos    voxel.ChunkPos
	Buffer mesh.Buffer
}

// Pool runs meshing tasks on a fixed set of workers. Submission is
// non-blocking and completion order is unordered; the manager's staleness
// checks depend on that being acceptable.
type Pool struct {
	jobs    chan voxel.ChunkPos
	results chan Result
	wg      sync.WaitGroup
}

// NewPool starts workers goroutines consuming a queue of queueSize pending
// jobs. Results are buffered so workers never block on a slow consumer for
// the first queueSize completions per drain.
func NewPool(workers, queueSize int, fn MeshFunc) *Pool {
	p := &Pool{
		jobs:    make(chan voxel.ChunkPos, queueSize),
		results: make(chan Result, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for pos := range p.jobs {
				p.results <- Result{Pos: pos, Buffer: fn(pos)}
			}
		}()
	}
	return p
}

// TrySubmit enqueues a chunk without blocking. A false return means the
// queue is full; the caller leaves the chunk for a later tick.
func (p *Pool) TrySubmit(pos voxel.ChunkPos) bool {
	select {
	case p.jobs <- pos:
		return true
	default:
		return false
	}
}

// Results exposes the completion channel for non-blocking drains.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops accepting work and waits for in-flight tasks, discarding
// whatever they produce; results of a closing pool are stale by definition.
func (p *Pool) Close() {
	close(p.jobs)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-p.results:
		case <-done:
			close(p.results)
			return
		}
	}
}
