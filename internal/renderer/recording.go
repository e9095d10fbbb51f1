package renderer

import (
	"sync"

	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is what a RecordingRenderer saw in one Render call.
type Snapshot struct {
	Frame          int
	Width, Height  int
	PixelRatio     float64
	BufferWidth    int
	BufferHeight   int
	CameraAspect   float32
	CameraPosition mgl32.Vec3
	CameraFront    mgl32.Vec3
	// Meshes maps visible mesh names to their world positions.
	Meshes map[string]mgl32.Vec3
	// Culled counts visible meshes outside the camera frustum.
	Culled int
}

// RecordingRenderer implements Render without a GPU. Every Render call
// stores a Snapshot, which makes it the renderer for headless runs.
type RecordingRenderer struct {
	Viewport
	Options Options

	mu        sync.Mutex
	snapshots []Snapshot
	limit     int
	frames    int
	cleaned   bool
}

// NewRecordingRenderer keeps at most limit snapshots; 0 keeps all of them.
func NewRecordingRenderer(opts Options, limit int) *RecordingRenderer {
	return &RecordingRenderer{Options: opts, limit: limit}
}

func (r *RecordingRenderer) Render(sc *scene.Scene, camera *Camera) {
	snap := Snapshot{
		PixelRatio: r.PixelRatio(),
		Meshes:     make(map[string]mgl32.Vec3),
	}
	snap.Width, snap.Height = r.Size()
	snap.BufferWidth, snap.BufferHeight = r.DrawingBufferSize()

	var frustum Frustum
	if camera != nil {
		snap.CameraAspect = camera.AspectRatio
		snap.CameraPosition = camera.Eye()
		snap.CameraFront = camera.Front
		frustum = camera.CalculateFrustum()
	}
	if sc != nil {
		for _, m := range scene.VisibleMeshes(sc) {
			snap.Meshes[m.Name] = m.WorldPosition()
			if camera != nil {
				center, radius := m.WorldBoundingSphere()
				if !frustum.IntersectsSphere(center, radius) {
					snap.Culled++
				}
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	snap.Frame = r.frames
	r.snapshots = append(r.snapshots, snap)
	if r.limit > 0 && len(r.snapshots) > r.limit {
		r.snapshots = r.snapshots[len(r.snapshots)-r.limit:]
	}
}

// Frames is the total number of Render calls.
func (r *RecordingRenderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *RecordingRenderer) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snapshots...)
}

// Last returns the most recent snapshot.
func (r *RecordingRenderer) Last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

func (r *RecordingRenderer) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleaned = true
	r.snapshots = nil
}

func (r *RecordingRenderer) CleanedUp() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleaned
}
