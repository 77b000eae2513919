// Package renderer draws resident terrain segments, their entities and the
// player with a chase camera.
package renderer

import (
	"fmt"
	"hash/fnv"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/islandrun/internal/engine/camera"
	"github.com/Faultbox/islandrun/internal/engine/mesh"
	"github.com/Faultbox/islandrun/internal/engine/shader"
	"github.com/Faultbox/islandrun/internal/game/effects"
	"github.com/Faultbox/islandrun/internal/game/entity"
	"github.com/Faultbox/islandrun/internal/game/player"
	"github.com/Faultbox/islandrun/internal/game/terrain"
	"github.com/Faultbox/islandrun/pkg/math"
)

var (
	skyColor = [3]float32{0.55, 0.75, 0.95}
	lightDir = math.Vec3{X: -0.3, Y: -1, Z: -0.4}.Normalize()
)

// gpuMesh is an uploaded indexed mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type segmentGPU struct {
	seg     *terrain.Segment
	surface gpuMesh
	cap     gpuMesh
	color   [3]float32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	log    *zap.Logger
	width  int
	height int

	camera   *camera.ChaseCamera
	program  *shader.Program
	cube     gpuMesh
	segments map[int]*segmentGPU

	// Per-entity model matrices, dropped on RemoveEntity.
	instances map[entity.ID]math.Mat4
	scales    map[entity.ID]float32
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(width, height int, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		log:       log,
		width:     width,
		height:    height,
		camera:    camera.NewChaseCamera(),
		segments:  make(map[int]*segmentGPU),
		instances: make(map[entity.ID]math.Mat4),
		scales:    make(map[entity.ID]float32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	applyState()
	gl.Viewport(0, 0, int32(width), int32(height))

	var err error
	r.program, err = shader.NewProgram(shader.LitVertex, shader.LitFragment,
		"uModel", "uViewProj", "uColor", "uLightDir", "uFogColor", "uFogDensity")
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.cube = upload(mesh.NewCube(1))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("segments", len(r.segments)))
	for _, s := range r.segments {
		s.surface.delete()
		s.cap.delete()
	}
	r.segments = nil
	r.cube.delete()
	r.program.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AddSegment uploads a segment's surface and cap.
func (r *Renderer) AddSegment(seg *terrain.Segment) {
	if _, ok := r.segments[seg.Index]; ok {
		return
	}
	s := &segmentGPU{
		seg:     seg,
		surface: upload(seg.Mesh),
		color:   TerrainColor(seg.Texture),
	}
	if seg.Cap != nil {
		s.cap = upload(seg.Cap)
	}
	if len(r.segments) == 0 {
		r.camera.Reset()
	}
	r.segments[seg.Index] = s
	r.log.Debug("segment uploaded",
		zap.Int("segment", seg.Index),
		zap.Int32("indices", s.surface.count),
	)
}

// RemoveSegment frees a segment's buffers.
func (r *Renderer) RemoveSegment(seg *terrain.Segment) {
	s, ok := r.segments[seg.Index]
	if !ok {
		return
	}
	s.surface.delete()
	s.cap.delete()
	delete(r.segments, seg.Index)
}

// RemoveEntity drops an entity's cached transform.
func (r *Renderer) RemoveEntity(e *entity.Spawnable) {
	delete(r.instances, e.ID)
	delete(r.scales, e.ID)
}

// applyState sets the fixed-function state the lit pass needs. An overlay
// drawn between frames may have changed any of it.
func applyState() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(skyColor[0], skyColor[1], skyColor[2], 1.0)
}

// Draw renders one frame seen from behind the player.
func (r *Renderer) Draw(st *player.State, dt float32) {
	applyState()
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.camera.Follow(st.Position, dt)
	aspect := float32(r.width) / float32(max(r.height, 1))
	viewProj := r.camera.ViewProjection(st.Position, aspect)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform3f(r.program.Uniform("uLightDir"), lightDir.X, lightDir.Y, lightDir.Z)
	gl.Uniform3f(r.program.Uniform("uFogColor"), skyColor[0], skyColor[1], skyColor[2])
	gl.Uniform1f(r.program.Uniform("uFogDensity"), 0.0012)

	for _, s := range r.segments {
		model := math.Translate(s.seg.Origin())
		r.drawMesh(s.surface, model, s.color)
		if s.cap.count > 0 {
			capModel := math.Translate(s.seg.CapOrigin())
			r.drawMesh(s.cap, capModel, s.color)
		}
		for _, group := range [][]*entity.Spawnable{s.seg.Vegetation, s.seg.Clouds, s.seg.Entities} {
			for _, e := range group {
				if !e.Alive {
					continue
				}
				r.drawMesh(r.cube, r.instance(e, s.seg.Origin()), EntityColor(e))
			}
		}
	}

	playerModel := math.Compose(st.Position, st.Orientation).Mul(scale(2))
	r.drawMesh(r.cube, playerModel, PlayerColor(st))

	gl.BindVertexArray(0)
}

func (r *Renderer) instance(e *entity.Spawnable, origin math.Vec3) math.Mat4 {
	s := e.Size * e.Scale
	if m, ok := r.instances[e.ID]; ok && r.scales[e.ID] == s {
		return m
	}
	m := math.Translate(e.WorldPosition(origin)).Mul(scale(s))
	r.instances[e.ID] = m
	r.scales[e.ID] = s
	return m
}

func (r *Renderer) drawMesh(m gpuMesh, model math.Mat4, color [3]float32) {
	if m.count == 0 {
		return
	}
	gl.UniformMatrix4fv(r.program.Uniform("uModel"), 1, false, model.Ptr())
	gl.Uniform3f(r.program.Uniform("uColor"), color[0], color[1], color[2])
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
}

// upload copies a mesh into a VAO with interleaved position, normal and UV.
func upload(m *mesh.Mesh) gpuMesh {
	var g gpuMesh
	if m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return g
	}
	stride := int32(unsafe.Sizeof(mesh.Vertex{}))

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	// Position, normal, UV
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	g.count = int32(len(m.Indices))
	return g
}

func (g *gpuMesh) delete() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	*g = gpuMesh{}
}

var terrainPalette = [][3]float32{
	{0.36, 0.62, 0.28},
	{0.78, 0.72, 0.48},
	{0.48, 0.45, 0.40},
	{0.90, 0.92, 0.95},
}

// TerrainColor picks a stable colour for a texture name.
func TerrainColor(texture string) [3]float32 {
	h := fnv.New32a()
	h.Write([]byte(texture))
	return terrainPalette[h.Sum32()%uint32(len(terrainPalette))]
}

// EntityColor returns the flat colour an entity is drawn with.
func EntityColor(e *entity.Spawnable) [3]float32 {
	switch e.Kind {
	case entity.KindEnemy:
		return [3]float32{0.85, 0.15, 0.12}
	case entity.KindCollectible:
		return [3]float32{1.0, 0.85, 0.1}
	case entity.KindPowerup:
		switch e.Variant {
		case entity.VariantScoreDoubler:
			return [3]float32{0.2, 0.9, 0.3}
		case entity.VariantInvulnerability:
			return [3]float32{0.3, 0.5, 1.0}
		default:
			return [3]float32{0.8, 0.3, 0.9}
		}
	case entity.KindVegetation:
		return [3]float32{0.12, 0.42, 0.16}
	case entity.KindCloud:
		return [3]float32{0.97, 0.97, 1.0}
	}
	return [3]float32{1, 0, 1}
}

// PlayerColor tints the player while an effect is running.
func PlayerColor(st *player.State) [3]float32 {
	switch {
	case st.Terminal:
		return [3]float32{0.3, 0.3, 0.3}
	case st.EffectActive(effects.Invulnerability):
		return [3]float32{0.3, 0.5, 1.0}
	default:
		return [3]float32{1.0, 0.55, 0.1}
	}
}

func scale(s float32) math.Mat4 {
	m := math.Identity()
	m[0], m[5], m[10] = s, s, s
	return m
}
