package erosion

import (
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"voxelterra/internal/config"
)

// GPUEngine mirrors the CPU droplet math inside a batched compute
// kernel, one thread per droplet. Droplets within a batch read and
// write the shared height/sediment buffers with no atomics: the race
// is intentional and accepted, visual plausibility is the target, not
// numerical exactness. Batches are strictly ordered against each
// other, so batch n+1 observes batch n's terrain.
//
// A GL context is bound to one OS thread, so the engine owns a
// dedicated locked goroutine and every GL call is funneled through it;
// Erode is synchronous from the caller's perspective.
type GPUEngine struct {
	jobs      chan func()
	available bool

	window  *glfw.Window
	program uint32
}

const kernelLocalSize = 64

// NewGPUEngine creates the offscreen context and compiles the erosion
// kernel. Construction failure is not fatal: the engine is returned
// with Available() false and the simulator falls back to the CPU path.
func NewGPUEngine() *GPUEngine {
	e := &GPUEngine{jobs: make(chan func())}

	ready := make(chan error)
	go e.run(ready)
	if err := <-ready; err != nil {
		log.Printf("erosion: GPU engine unavailable, using CPU fallback: %v", err)
		return e
	}
	e.available = true
	return e
}

// run owns the GL context thread for the engine's lifetime.
func (e *GPUEngine) run(ready chan<- error) {
	runtime.LockOSThread()

	if err := e.initGL(); err != nil {
		ready <- err
		return
	}
	ready <- nil

	for job := range e.jobs {
		job()
	}

	e.window.Destroy()
	glfw.Terminate()
}

func (e *GPUEngine) initGL() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init failed: %v", err)
	}

	// Compute shaders need a 4.3 core context; the window stays hidden,
	// it only anchors the context.
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Visible, glfw.False)

	window, err := glfw.CreateWindow(16, 16, "erosion-compute", nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create offscreen window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return fmt.Errorf("could not init GL: %v", err)
	}

	program, err := compileComputeProgram(erosionKernelSource)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return fmt.Errorf("kernel compile failed: %v", err)
	}

	e.window = window
	e.program = program
	return nil
}

// Available reports whether the context and kernel came up. It says
// nothing about whether a simulation has run.
func (e *GPUEngine) Available() bool {
	return e.available
}

// Close releases the GL context. The engine is unusable afterwards.
func (e *GPUEngine) Close() {
	if e.jobs != nil {
		close(e.jobs)
		e.jobs = nil
	}
}

// do runs f on the context thread and waits for it.
func (e *GPUEngine) do(f func()) {
	done := make(chan struct{})
	e.jobs <- func() {
		f()
		close(done)
	}
	<-done
}

// Erode uploads the field once, dispatches DropletCount droplets in
// batches of cfg.GPU.BatchSize, and downloads the result after the
// last batch. A memory barrier and finish between batches is the
// host/device round trip that orders them.
func (e *GPUEngine) Erode(hm *Heightmap, cfg config.Erosion, seed int64) {
	if !e.available {
		return
	}
	p := cfg.Particle
	if p.DropletCount <= 0 || p.MaxDropletLifetime <= 0 {
		return
	}
	batchSize := cfg.GPU.BatchSize
	if batchSize <= 0 {
		batchSize = p.DropletCount
	}

	heights32 := make([]float32, len(hm.height))
	for i, h := range hm.height {
		heights32[i] = float32(h)
	}
	sediment32 := make([]float32, len(hm.sediment))
	for i, s := range hm.sediment {
		sediment32[i] = float32(s)
	}

	e.do(func() {
		gl.UseProgram(e.program)

		var heightBuf, sedimentBuf uint32
		gl.GenBuffers(1, &heightBuf)
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, heightBuf)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, 4*len(heights32), gl.Ptr(heights32), gl.DYNAMIC_COPY)

		gl.GenBuffers(1, &sedimentBuf)
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, sedimentBuf)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, 4*len(sediment32), gl.Ptr(sediment32), gl.DYNAMIC_COPY)

		setUniform1i(e.program, "uTotalW", int32(hm.totalW))
		setUniform1i(e.program, "uTotalD", int32(hm.totalD))
		setUniform1i(e.program, "uDropletCount", int32(p.DropletCount))
		setUniform1i(e.program, "uMaxLifetime", int32(p.MaxDropletLifetime))
		setUniform1i(e.program, "uErosionRadius", int32(p.ErosionRadius))
		setUniform1i(e.program, "uSeed", int32(uint32(seed)^uint32(uint64(seed)>>32)))
		setUniform1f(e.program, "uInertia", float32(p.Inertia))
		setUniform1f(e.program, "uSedimentCapacity", float32(p.SedimentCapacity))
		setUniform1f(e.program, "uMinSedimentCapacity", float32(p.MinSedimentCapacity))
		setUniform1f(e.program, "uErosionRate", float32(p.ErosionRate))
		setUniform1f(e.program, "uDepositionRate", float32(p.DepositionRate))
		setUniform1f(e.program, "uGravity", float32(p.Gravity))
		setUniform1f(e.program, "uEvaporationRate", float32(p.EvaporationRate))

		for offset := 0; offset < p.DropletCount; offset += batchSize {
			count := batchSize
			if offset+count > p.DropletCount {
				count = p.DropletCount - offset
			}
			setUniform1i(e.program, "uBatchOffset", int32(offset))
			setUniform1i(e.program, "uBatchCount", int32(count))

			groups := uint32((count + kernelLocalSize - 1) / kernelLocalSize)
			gl.DispatchCompute(groups, 1, 1)

			// Strict batch ordering: flush writes and block until the
			// device is done before the next dispatch.
			gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
			gl.Finish()
		}

		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, heightBuf)
		gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 4*len(heights32), gl.Ptr(heights32))
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, sedimentBuf)
		gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 4*len(sediment32), gl.Ptr(sediment32))

		gl.DeleteBuffers(1, &heightBuf)
		gl.DeleteBuffers(1, &sedimentBuf)
	})

	for i, h := range heights32 {
		hm.height[i] = float64(h)
	}
	for i, s := range sediment32 {
		hm.sediment[i] = float64(s)
	}
}

func setUniform1i(program uint32, name string, v int32) {
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str(name+"\x00")), v)
}

func setUniform1f(program uint32, name string, v float32) {
	gl.Uniform1f(gl.GetUniformLocation(program, gl.Str(name+"\x00")), v)
}

func compileComputeProgram(source string) (uint32, error) {
	shader, err := compileShader(source, gl.COMPUTE_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))

		return 0, fmt.Errorf("failed to link program: %v", infoLog)
	}
	gl.DeleteShader(shader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))

		return 0, fmt.Errorf("failed to compile shader: %v", infoLog)
	}
	return shader, nil
}

// erosionKernelSource is the droplet kernel. It is the CPU engine's
// per-droplet math transcribed to GLSL; the shared-buffer writes are
// deliberately non-atomic.
const erosionKernelSource = `#version 430

layout(local_size_x = 64) in;

layout(std430, binding = 0) buffer HeightBuf {
    float height[];
};
layout(std430, binding = 1) buffer SedimentBuf {
    float sediment[];
};

uniform int uTotalW;
uniform int uTotalD;
uniform int uDropletCount;
uniform int uBatchOffset;
uniform int uBatchCount;
uniform int uMaxLifetime;
uniform int uErosionRadius;
uniform int uSeed;
uniform float uInertia;
uniform float uSedimentCapacity;
uniform float uMinSedimentCapacity;
uniform float uErosionRate;
uniform float uDepositionRate;
uniform float uGravity;
uniform float uEvaporationRate;

uint rngState;

uint hashUint(uint v) {
    v ^= v >> 16;
    v *= 0x7FEB352Du;
    v ^= v >> 15;
    v *= 0x846CA68Bu;
    v ^= v >> 16;
    return v;
}

float nextFloat() {
    rngState = hashUint(rngState);
    return float(rngState) / 4294967295.0;
}

int cellIndex(int x, int z) {
    return z * uTotalW + x;
}

float heightAt(int x, int z) {
    if (x < 0 || x >= uTotalW || z < 0 || z >= uTotalD) {
        return 0.0;
    }
    return height[cellIndex(x, z)];
}

float sampleBilinear(vec2 p) {
    p.x = clamp(p.x, 0.0, float(uTotalW - 2));
    p.y = clamp(p.y, 0.0, float(uTotalD - 2));
    int x0 = int(p.x);
    int z0 = int(p.y);
    float fx = p.x - float(x0);
    float fz = p.y - float(z0);

    float h00 = height[cellIndex(x0, z0)];
    float h10 = height[cellIndex(x0 + 1, z0)];
    float h01 = height[cellIndex(x0, z0 + 1)];
    float h11 = height[cellIndex(x0 + 1, z0 + 1)];

    float top = h00 + (h10 - h00) * fx;
    float bot = h01 + (h11 - h01) * fx;
    return top + (bot - top) * fz;
}

vec2 gradientAt(vec2 p) {
    float gx = (sampleBilinear(p + vec2(1.0, 0.0)) - sampleBilinear(p - vec2(1.0, 0.0))) * 0.5;
    float gz = (sampleBilinear(p + vec2(0.0, 1.0)) - sampleBilinear(p - vec2(0.0, 1.0))) * 0.5;
    return vec2(gx, gz);
}

void addHeight(vec2 p, float delta) {
    p.x = clamp(p.x, 0.0, float(uTotalW - 2));
    p.y = clamp(p.y, 0.0, float(uTotalD - 2));
    int x0 = int(p.x);
    int z0 = int(p.y);
    float fx = p.x - float(x0);
    float fz = p.y - float(z0);

    height[cellIndex(x0, z0)] += delta * (1.0 - fx) * (1.0 - fz);
    height[cellIndex(x0 + 1, z0)] += delta * fx * (1.0 - fz);
    height[cellIndex(x0, z0 + 1)] += delta * (1.0 - fx) * fz;
    height[cellIndex(x0 + 1, z0 + 1)] += delta * fx * fz;
}

void depositSediment(vec2 p, float amount) {
    addHeight(p, amount);
    p.x = clamp(p.x, 0.0, float(uTotalW - 2));
    p.y = clamp(p.y, 0.0, float(uTotalD - 2));
    int x0 = int(p.x);
    int z0 = int(p.y);
    float fx = p.x - float(x0);
    float fz = p.y - float(z0);

    sediment[cellIndex(x0, z0)] += amount * (1.0 - fx) * (1.0 - fz);
    sediment[cellIndex(x0 + 1, z0)] += amount * fx * (1.0 - fz);
    sediment[cellIndex(x0, z0 + 1)] += amount * (1.0 - fx) * fz;
    sediment[cellIndex(x0 + 1, z0 + 1)] += amount * fx * fz;
}

void erodeAt(vec2 p, float amount) {
    if (uErosionRadius <= 1) {
        addHeight(p, -amount);
        return;
    }
    int cx = int(p.x);
    int cz = int(p.y);
    float r = float(uErosionRadius);

    float totalWeight = 0.0;
    for (int dz = -uErosionRadius; dz <= uErosionRadius; dz++) {
        for (int dx = -uErosionRadius; dx <= uErosionRadius; dx++) {
            int nx = cx + dx;
            int nz = cz + dz;
            if (nx < 0 || nx >= uTotalW || nz < 0 || nz >= uTotalD) {
                continue;
            }
            float dist = distance(vec2(float(nx), float(nz)), p);
            float w = r - dist;
            if (w > 0.0) {
                totalWeight += w;
            }
        }
    }
    if (totalWeight <= 0.0) {
        addHeight(p, -amount);
        return;
    }
    for (int dz = -uErosionRadius; dz <= uErosionRadius; dz++) {
        for (int dx = -uErosionRadius; dx <= uErosionRadius; dx++) {
            int nx = cx + dx;
            int nz = cz + dz;
            if (nx < 0 || nx >= uTotalW || nz < 0 || nz >= uTotalD) {
                continue;
            }
            float dist = distance(vec2(float(nx), float(nz)), p);
            float w = r - dist;
            if (w > 0.0) {
                height[cellIndex(nx, nz)] -= amount * w / totalWeight;
            }
        }
    }
}

void main() {
    int local = int(gl_GlobalInvocationID.x);
    if (local >= uBatchCount) {
        return;
    }
    int dropletId = uBatchOffset + local;
    if (dropletId >= uDropletCount) {
        return;
    }

    rngState = hashUint(uint(dropletId) * 747796405u + uint(uSeed));

    float maxX = float(uTotalW - 2);
    float maxZ = float(uTotalD - 2);
    if (maxX <= 1.0 || maxZ <= 1.0) {
        return;
    }

    vec2 pos = vec2(1.0 + nextFloat() * (maxX - 1.0), 1.0 + nextFloat() * (maxZ - 1.0));
    vec2 dir = vec2(0.0);
    float speed = 1.0;
    float water = 1.0;
    float sed = 0.0;

    for (int life = 0; life < uMaxLifetime; life++) {
        float h = sampleBilinear(pos);
        vec2 grad = gradientAt(pos);

        dir = dir * uInertia - grad * (1.0 - uInertia);
        if (length(dir) < 1e-8) {
            float angle = nextFloat() * 6.2831853;
            dir = vec2(cos(angle), sin(angle));
        } else {
            dir = normalize(dir);
        }

        vec2 next = pos + dir;
        if (next.x < 1.0 || next.x >= maxX || next.y < 1.0 || next.y >= maxZ) {
            depositSediment(pos, sed * 0.5);
            return;
        }

        float newHeight = sampleBilinear(next);
        float deltaHeight = newHeight - h;

        float capacity = max(-deltaHeight * speed * water * uSedimentCapacity, uMinSedimentCapacity);

        if (sed > capacity || deltaHeight > 0.0) {
            float deposit;
            if (deltaHeight > 0.0) {
                deposit = min(deltaHeight, sed);
            } else {
                deposit = (sed - capacity) * uDepositionRate;
            }
            sed -= deposit;
            depositSediment(pos, deposit);
        } else {
            float erode = min((capacity - sed) * uErosionRate, -deltaHeight);
            erodeAt(pos, erode);
            sed += erode;
        }

        speed = sqrt(max(0.0, speed * speed + deltaHeight * uGravity));
        water *= 1.0 - uEvaporationRate;
        pos = next;

        if (water < 0.01) {
            return;
        }
    }
}
`
