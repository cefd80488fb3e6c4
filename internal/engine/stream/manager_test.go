package stream

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voxelforge/voxelforge/internal/engine/mesh"
	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// fakeScene counts renderer and physics traffic; it stands in for both
// collaborators.
type fakeScene struct {
	mu        sync.Mutex
	rendered  map[uuid.UUID]voxel.ChunkPos
	colliders map[uuid.UUID]voxel.ChunkPos
	renders   int
	discards  int
	removes   int
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		rendered:  make(map[uuid.UUID]voxel.ChunkPos),
		colliders: make(map[uuid.UUID]voxel.ChunkPos),
	}
}

func (s *fakeScene) Render(pos voxel.ChunkPos, b *mesh.Buffer) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.rendered[id] = pos
	s.renders++
	return id, nil
}

func (s *fakeScene) Discard(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rendered, id)
	s.discards++
}

func (s *fakeScene) AddCollider(pos voxel.ChunkPos, c mesh.Collision) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.colliders[id] = pos
	return id, nil
}

func (s *fakeScene) RemoveCollider(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.colliders, id)
	s.removes++
}

func (s *fakeScene) renderedPositions() []voxel.ChunkPos {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]voxel.ChunkPos, 0, len(s.rendered))
	for _, pos := range s.rendered {
		out = append(out, pos)
	}
	return out
}

// meshCounter wraps a MeshFunc and records how many times each chunk was
// generated.
type meshCounter struct {
	mu     sync.Mutex
	counts map[voxel.ChunkPos]int
	fn     MeshFunc
}

func newMeshCounter(fn MeshFunc) *meshCounter {
	return &meshCounter{counts: make(map[voxel.ChunkPos]int), fn: fn}
}

func (c *meshCounter) mesh(pos voxel.ChunkPos) mesh.Buffer {
	c.mu.Lock()
	c.counts[pos]++
	c.mu.Unlock()
	return c.fn(pos)
}

func (c *meshCounter) count(pos voxel.ChunkPos) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[pos]
}

func (c *meshCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// settle ticks the manager at a fixed viewer position until cond holds.
// Results arrive asynchronously, so the loop gives workers time to finish.
func settle(t *testing.T, m *Manager, x, z float64, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m.Tick(x, z)
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("manager did not settle before the deadline")
}

func TestManagerRadiusOneResolvesNineChunks(t *testing.T) {
	scene := newFakeScene()
	pool := NewPool(4, 64, func(pos voxel.ChunkPos) mesh.Buffer {
		return solidBuffer(pos, 16)
	})
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })

	if got := m.LoadedCount(); got != 9 {
		t.Errorf("loaded set has %d chunks, want 9", got)
	}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			pos := voxel.ChunkPos{X: dx, Z: dz}
			if !m.Loaded(pos) {
				t.Errorf("chunk %v not loaded", pos)
			}
		}
	}
	if got := scene.renders; got != 9 {
		t.Errorf("renderer received %d meshes, want 9", got)
	}
	if got := len(scene.colliders); got != 9 {
		t.Errorf("physics holds %d colliders, want 9", got)
	}
}

func TestManagerDispatchIsIdempotent(t *testing.T) {
	release := make(chan struct{})
	counter := newMeshCounter(func(pos voxel.ChunkPos) mesh.Buffer {
		<-release
		return solidBuffer(pos, 16)
	})
	scene := newFakeScene()
	pool := NewPool(2, 64, counter.mesh)
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	// Repeated ticks while every task is still in flight must not dispatch
	// any chunk a second time.
	for i := 0; i < 5; i++ {
		m.Tick(8, 8)
	}
	close(release)

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })

	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			pos := voxel.ChunkPos{X: dx, Z: dz}
			if got := counter.count(pos); got != 1 {
				t.Errorf("chunk %v generated %d times, want 1", pos, got)
			}
		}
	}
}

func TestManagerConvergesAfterMovement(t *testing.T) {
	scene := newFakeScene()
	pool := NewPool(4, 64, func(pos voxel.ChunkPos) mesh.Buffer {
		return solidBuffer(pos, 16)
	})
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })

	// Jump ten chunks east: the loaded set must converge on the new
	// neighborhood with nothing from the old one left behind.
	settle(t, m, 168, 8, func() bool {
		return m.ResolvedCount() == 9 && m.LoadedCount() == 9
	})

	center := voxel.ChunkPos{X: 10, Z: 0}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			pos := voxel.ChunkPos{X: center.X + dx, Z: center.Z + dz}
			if !m.Loaded(pos) {
				t.Errorf("chunk %v not loaded after movement", pos)
			}
		}
	}
	if m.Loaded(voxel.ChunkPos{X: 0, Z: 0}) {
		t.Error("origin chunk still loaded ten chunks away")
	}
	for _, pos := range scene.renderedPositions() {
		if !pos.WithinRadius(center, 1) {
			t.Errorf("scene still holds renderable for out-of-range chunk %v", pos)
		}
	}
}

func TestManagerDiscardsStaleResults(t *testing.T) {
	release := make(chan struct{})
	scene := newFakeScene()
	pool := NewPool(2, 64, func(pos voxel.ChunkPos) mesh.Buffer {
		<-release
		return solidBuffer(pos, 16)
	})
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	// Dispatch around the origin, then leave before anything finishes.
	m.Tick(8, 8)
	m.Tick(1608, 8)
	close(release)

	settle(t, m, 1608, 8, func() bool { return m.ResolvedCount() == 9 })

	center := voxel.ChunkPos{X: 100, Z: 0}
	for _, pos := range scene.renderedPositions() {
		if !pos.WithinRadius(center, 1) {
			t.Errorf("stale chunk %v was attached to the scene", pos)
		}
	}
	if m.Loaded(voxel.ChunkPos{X: 0, Z: 0}) {
		t.Error("abandoned origin chunk still in the loaded set")
	}
}

func TestManagerEmptyChunksStayLoaded(t *testing.T) {
	counter := newMeshCounter(func(pos voxel.ChunkPos) mesh.Buffer {
		return mesh.Buffer{}
	})
	scene := newFakeScene()
	pool := NewPool(4, 64, counter.mesh)
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })

	if got := scene.renders; got != 0 {
		t.Errorf("empty buffers produced %d renderables, want 0", got)
	}
	if got := m.LoadedCount(); got != 9 {
		t.Errorf("loaded set has %d chunks, want 9", got)
	}

	// Empty chunks are resolved: further ticks must not regenerate them.
	before := counter.total()
	for i := 0; i < 5; i++ {
		m.Tick(8, 8)
	}
	if got := counter.total(); got != before {
		t.Errorf("resolved empty chunks regenerated: %d tasks, want %d", got, before)
	}
}

func TestManagerAcceptsBoundaryVertexMeshes(t *testing.T) {
	// A bottom face's first vertex sits at z+1, which for a voxel in the
	// last local row lands exactly on the chunk's far z boundary. Such a
	// mesh must integrate rather than cycle through dispatch and discard.
	counter := newMeshCounter(func(pos voxel.ChunkPos) mesh.Buffer {
		x := float32(pos.X*16) + 0.5
		z := float32((pos.Z + 1) * 16)
		return mesh.Buffer{
			Positions: [][3]float32{{x, 1, z}, {x, 1, z - 1}, {x + 1, 1, z - 1}, {x + 1, 1, z}},
			Normals:   [][3]float32{{0, -1, 0}, {0, -1, 0}, {0, -1, 0}, {0, -1, 0}},
			UVs:       [][2]float32{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
			Indices:   []uint32{0, 1, 2, 0, 2, 3},
		}
	})
	scene := newFakeScene()
	pool := NewPool(4, 64, counter.mesh)
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)
	defer m.Close()

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })

	if got := scene.renders; got != 9 {
		t.Errorf("renderer received %d meshes, want 9", got)
	}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			pos := voxel.ChunkPos{X: dx, Z: dz}
			if got := counter.count(pos); got != 1 {
				t.Errorf("chunk %v generated %d times, want 1", pos, got)
			}
		}
	}
}

func TestManagerTickAfterCloseIsInert(t *testing.T) {
	scene := newFakeScene()
	pool := NewPool(2, 16, func(pos voxel.ChunkPos) mesh.Buffer {
		return solidBuffer(pos, 16)
	})
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })
	m.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Tick(8, 8)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Tick after Close did not return")
	}
	if got := m.LoadedCount(); got != 0 {
		t.Errorf("Tick after Close reloaded %d chunks, want 0", got)
	}
}

func TestManagerCloseTearsDownScene(t *testing.T) {
	scene := newFakeScene()
	pool := NewPool(4, 64, func(pos voxel.ChunkPos) mesh.Buffer {
		return solidBuffer(pos, 16)
	})
	m := NewManager(testLogger(), pool, scene, scene, 1, 16)

	settle(t, m, 8, 8, func() bool { return m.ResolvedCount() == 9 })
	m.Close()

	if got := len(scene.rendered); got != 0 {
		t.Errorf("%d renderables survived Close", got)
	}
	if got := len(scene.colliders); got != 0 {
		t.Errorf("%d colliders survived Close", got)
	}
	if got := m.LoadedCount(); got != 0 {
		t.Errorf("loaded set has %d chunks after Close, want 0", got)
	}
}
