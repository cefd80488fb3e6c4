package stream

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/voxelforge/voxelforge/internal/engine/voxel"
)

// entry tracks one chunk from dispatch to teardown. A chunk is in the
// loaded set from the instant its task is dispatched, which is what makes
// re-dispatch impossible while the task is still in flight.
type entry struct {
	resolved   bool
	hasScene   bool
	renderID   uuid.UUID
	colliderID uuid.UUID
}

// Manager owns the loaded-chunk set and drives streaming around the viewer.
//
// All state is confined to the goroutine calling Tick: workers only ever
// return values through the pool's results channel, so no lock guards the
// loaded set. Tick never blocks; it dispatches fire-and-forget and drains
// completions non-blocking.
type Manager struct {
	log       *slog.Logger
	pool      *Pool
	renderer  Renderer
	physics   Physics
	radius    int
	chunkSize int

	loaded map[voxel.ChunkPos]*entry
	center voxel.ChunkPos
	closed bool
}

// NewManager wires the manager to its collaborators. radius is the render
// radius in chunks; chunkSize the chunk footprint in blocks.
func NewManager(log *slog.Logger, pool *Pool, r Renderer, ph Physics, radius, chunkSize int) *Manager {
	return &Manager{
		log:       log,
		pool:      pool,
		renderer:  r,
		physics:   ph,
		radius:    radius,
		chunkSize: chunkSize,
		loaded:    make(map[voxel.ChunkPos]*entry),
	}
}

// Tick recenters the world on the viewer position: dispatches generation
// for missing chunks, unloads chunks out of range, and integrates finished
// meshes. Must always be called from the same goroutine.
func (m *Manager) Tick(viewX, viewZ float64) {
	if m.closed {
		return
	}
	m.center = voxel.ChunkFromWorld(viewX, viewZ, m.chunkSize)

	// Load pass: every target chunk not yet tracked is claimed in the
	// loaded set before its task is submitted, so the next tick cannot
	// dispatch it twice. A full queue rolls the claim back and the chunk
	// is retried on a later tick.
	for dx := -m.radius; dx <= m.radius; dx++ {
		for dz := -m.radius; dz <= m.radius; dz++ {
			pos := voxel.ChunkPos{X: m.center.X + dx, Z: m.center.Z + dz}
			if _, ok := m.loaded[pos]; ok {
				continue
			}
			m.loaded[pos] = &entry{}
			if !m.pool.TrySubmit(pos) {
				delete(m.loaded, pos)
			}
		}
	}

	// Unload pass.
	for pos, e := range m.loaded {
		if pos.WithinRadius(m.center, m.radius) {
			continue
		}
		m.teardown(pos, e)
		delete(m.loaded, pos)
	}

	// Poll pass: drain every completion that is already available.
	for {
		select {
		case res, ok := <-m.pool.Results():
			if !ok {
				return
			}
			m.integrate(res)
		default:
			return
		}
	}
}

// integrate attaches a finished mesh, or discards it when the viewer has
// moved on. Tasks complete in arbitrary order, so both checks are
// load-bearing: the chunk may have been unloaded mid-flight, and a result
// surviving that may still land outside the current target set.
func (m *Manager) integrate(res Result) {
	e, ok := m.loaded[res.Pos]
	if !ok {
		m.log.Debug("discarding stale chunk", "cx", res.Pos.X, "cz", res.Pos.Z)
		return
	}

	if res.Buffer.Empty() {
		// A fully-air chunk is a valid result: it stays loaded with no
		// scene entity, and is never re-dispatched.
		e.resolved = true
		return
	}

	// Containment sanity check: the mesh's own geometry must lie inside
	// the cell of the chunk it claims to be, and that chunk must be a live
	// target. The cell is closed on both sides because face vertices land
	// exactly on the far boundary for voxels in the last local row.
	v := res.Buffer.Positions[0]
	minX := float32(res.Pos.X * m.chunkSize)
	minZ := float32(res.Pos.Z * m.chunkSize)
	size := float32(m.chunkSize)
	if v[0] < minX || v[0] > minX+size || v[2] < minZ || v[2] > minZ+size ||
		!res.Pos.WithinRadius(m.center, m.radius) {
		m.log.Debug("discarding out-of-range chunk", "cx", res.Pos.X, "cz", res.Pos.Z)
		delete(m.loaded, res.Pos)
		return
	}

	renderID, err := m.renderer.Render(res.Pos, &res.Buffer)
	if err != nil {
		m.log.Error("attach renderable", "cx", res.Pos.X, "cz", res.Pos.Z, "error", err)
		delete(m.loaded, res.Pos)
		return
	}
	colliderID, err := m.physics.AddCollider(res.Pos, res.Buffer.Collision())
	if err != nil {
		m.log.Error("attach collider", "cx", res.Pos.X, "cz", res.Pos.Z, "error", err)
		m.renderer.Discard(renderID)
		delete(m.loaded, res.Pos)
		return
	}

	e.resolved = true
	e.hasScene = true
	e.renderID = renderID
	e.colliderID = colliderID
}

func (m *Manager) teardown(pos voxel.ChunkPos, e *entry) {
	if !e.hasScene {
		return
	}
	m.log.Debug("unloading chunk", "cx", pos.X, "cz", pos.Z)
	m.renderer.Discard(e.renderID)
	m.physics.RemoveCollider(e.colliderID)
	e.hasScene = false
}

// LoadedCount reports the size of the loaded-chunk set, dispatched chunks
// included.
func (m *Manager) LoadedCount() int {
	return len(m.loaded)
}

// ResolvedCount reports how many loaded chunks have integrated results.
func (m *Manager) ResolvedCount() int {
	n := 0
	for _, e := range m.loaded {
		if e.resolved {
			n++
		}
	}
	return n
}

// Loaded reports whether a chunk is currently in the loaded set.
func (m *Manager) Loaded(pos voxel.ChunkPos) bool {
	_, ok := m.loaded[pos]
	return ok
}

// Close tears down every scene entity and stops the worker pool. Further
// Tick calls are no-ops.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for pos, e := range m.loaded {
		m.teardown(pos, e)
		delete(m.loaded, pos)
	}
	m.pool.Close()
}
