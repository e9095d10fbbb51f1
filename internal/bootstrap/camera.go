package bootstrap

import (
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

type cameraOptions struct {
	focal          scene.Node
	fov            float32
	near, far      float32
	depthOffset    float32
	resizeTracking bool
	camera         *renderer.Camera
	resizeTargets  []renderer.Sizer
}

type CameraOption func(*cameraOptions)

// WithFocalObject adds node to the scene and aims the camera at it.
func WithFocalObject(node scene.Node) CameraOption {
	return func(o *cameraOptions) { o.focal = node }
}

// WithFieldOfView sets the vertical field of view in degrees.
func WithFieldOfView(fov float32) CameraOption {
	return func(o *cameraOptions) { o.fov = fov }
}

func WithClipPlanes(near, far float32) CameraOption {
	return func(o *cameraOptions) { o.near, o.far = near, far }
}

// WithDepthOffset overrides how far along +Z the camera starts.
func WithDepthOffset(z float32) CameraOption {
	return func(o *cameraOptions) { o.depthOffset = z }
}

// WithResizeTracking controls whether viewport resizes update the camera
// and renderer.
func WithResizeTracking(enabled bool) CameraOption {
	return func(o *cameraOptions) { o.resizeTracking = enabled }
}

// WithCamera reuses an existing camera instead of building one. Its field
// of view and clip planes are kept; the aspect ratio follows the renderer.
func WithCamera(cam *renderer.Camera) CameraOption {
	return func(o *cameraOptions) { o.camera = cam }
}

// WithResizeTargets resizes extra targets, such as a post-processing
// composer, alongside the renderer.
func WithResizeTargets(targets ...renderer.Sizer) CameraOption {
	return func(o *cameraOptions) { o.resizeTargets = append(o.resizeTargets, targets...) }
}

// AttachDefaultCamera builds a perspective camera for rend, places it at the
// default depth offset, aims it at the focal object, adds camera and focal
// object to sc and renders once. The camera is ready to render on return.
func (s *Stage) AttachDefaultCamera(sc *scene.Scene, rend renderer.Render, opts ...CameraOption) *renderer.Camera {
	o := cameraOptions{
		fov:            s.defaults.Fov,
		near:           s.defaults.Near,
		far:            s.defaults.Far,
		depthOffset:    s.defaults.DepthOffset,
		resizeTracking: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cam := o.camera
	if cam == nil {
		cam = renderer.NewPerspectiveCamera(o.fov, aspectOf(rend.Size()), o.near, o.far)
	} else {
		cam.SetAspectRatio(aspectOf(rend.Size()))
	}
	cam.Position[2] = o.depthOffset

	if o.focal != nil {
		sc.Add(o.focal)
		cam.LookAt(o.focal.Base().WorldPosition())
	}
	sc.Add(cam)
	rend.Render(sc, cam)

	if o.resizeTracking {
		s.onForget(rend, s.TrackResize(cam, rend, o.resizeTargets...))
	}

	s.log.Debug("Default camera attached",
		zap.Float32("fov", cam.Fov),
		zap.Float32("aspect", cam.AspectRatio),
		zap.Bool("resizeTracking", o.resizeTracking))
	return cam
}

// TrackResize keeps cam's aspect ratio and the renderer size in step with
// the host viewport. The returned func removes the listener; listeners added
// by AttachDefaultCamera are removed by Forget instead.
func (s *Stage) TrackResize(cam *renderer.Camera, rend renderer.Render, extra ...renderer.Sizer) func() {
	return s.host.OnResize(func(width, height int) {
		cam.SetAspectRatio(aspectOf(width, height))
		ratio := s.host.DevicePixelRatio()
		ratioCap := s.capFor(rend)
		UpdateRendererSizeRatio(rend, width, height, ratio, ratioCap)
		for _, target := range extra {
			UpdateRendererSizeRatio(target, width, height, ratio, ratioCap)
		}
	})
}

func aspectOf(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
