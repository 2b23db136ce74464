package ibl

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pbr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pbr/engine/shading"
	"github.com/Carmen-Shannon/oxy-pbr/log"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var logger = log.New("ibl")

// baker is the implementation of the Baker interface.
type baker struct {
	pool            worker.DynamicWorkerPool
	workers         int
	queueSize       int
	profileInterval time.Duration
}

// Baker produces the image-based lighting inputs on the CPU. Work is split
// into independent tasks that each write their own slice of the output and
// run on a shared worker pool.
type Baker interface {
	// BakePrefiltered builds the prefiltered mip chain of src. Level 0 is a
	// copy of src; every other level is convolved with the GGX lobe at
	// roughness level/levels. One task runs per (level, face).
	//
	// Parameters:
	//   - ctx: cancels the bake; no new tasks start once it is done
	//   - src: the environment to prefilter
	//   - levels: number of mip levels, at least 1
	//   - sampleCount: GGX samples per texel
	//
	// Returns:
	//   - *PrefilteredCubemap: the mip chain
	//   - error: ErrInvalidCubemap, ErrInvalidSampleCount, a level-count error, or ctx.Err()
	BakePrefiltered(ctx context.Context, src *Cubemap, levels int, sampleCount uint32) (*PrefilteredCubemap, error)

	// BakeDFG integrates the split-sum DFG table. One task runs per row.
	//
	// Parameters:
	//   - ctx: cancels the bake; no new tasks start once it is done
	//   - size: the table width and height
	//   - sampleCount: GGX samples per texel
	//
	// Returns:
	//   - *DFGLUT: the table
	//   - error: ErrInvalidSampleCount, a size error, or ctx.Err()
	BakeDFG(ctx context.Context, size int, sampleCount uint32) (*DFGLUT, error)

	// Workers returns the maximum number of concurrent bake tasks.
	//
	// Returns:
	//   - int: the worker count
	Workers() int

	// Close stops the worker pool. The baker must not be used afterwards.
	Close()
}

var _ Baker = &baker{}

// NewBaker creates a Baker with one worker per CPU and applies the provided options.
//
// Parameters:
//   - opts: variadic list of BakerBuilderOption functions
//
// Returns:
//   - Baker: the new baker
func NewBaker(opts ...BakerBuilderOption) Baker {
	b := &baker{
		workers:         runtime.NumCPU(),
		queueSize:       256,
		profileInterval: time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, b.queueSize, 1*time.Second)
	return b
}

func (b *baker) Workers() int {
	return b.pool.GetMaxWorkers()
}

func (b *baker) Close() {
	b.pool.Stop()
}

func (b *baker) BakePrefiltered(ctx context.Context, src *Cubemap, levels int, sampleCount uint32) (*PrefilteredCubemap, error) {
	if err := validateCubemap(src); err != nil {
		return nil, err
	}
	if levels < 1 {
		return nil, fmt.Errorf("prefiltered chain needs at least 1 level, got %d", levels)
	}
	if sampleCount == 0 {
		return nil, ErrInvalidSampleCount
	}

	out := &PrefilteredCubemap{Levels: make([]*Cubemap, levels)}
	out.Levels[0] = NewCubemap(src.Size)
	for f := range src.Faces {
		copy(out.Levels[0].Faces[f], src.Faces[f])
	}

	var tasks []bakeTask
	for level := 1; level < levels; level++ {
		size := LevelSize(src.Size, level)
		dst := NewCubemap(size)
		out.Levels[level] = dst
		roughness := LevelRoughness(level, levels)

		for f := range dst.Faces {
			face := Face(f)
			texels := dst.Faces[f]
			tasks = append(tasks, func(ctx context.Context) int {
				for y := 0; y < size; y++ {
					if ctx.Err() != nil {
						return y * size
					}
					for x := 0; x < size; x++ {
						u := (float32(x) + 0.5) / float32(size)
						v := (float32(y) + 0.5) / float32(size)
						texels[y*size+x] = shading.Prefilter(src, FaceDirection(face, u, v), roughness, sampleCount)
					}
				}
				return size * size
			})
		}
	}

	logger.Debug("prefilter bake",
		zap.Int("size", src.Size),
		zap.Int("levels", levels),
		zap.Uint32("samples", sampleCount),
		zap.Int("tasks", len(tasks)),
	)
	if err := b.run(ctx, "prefilter", tasks); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *baker) BakeDFG(ctx context.Context, size int, sampleCount uint32) (*DFGLUT, error) {
	if size <= 0 {
		return nil, fmt.Errorf("DFG lookup table size must be positive, got %d", size)
	}
	if sampleCount == 0 {
		return nil, ErrInvalidSampleCount
	}

	out := &DFGLUT{Size: size, Data: make([]mgl32.Vec2, size*size)}
	tasks := make([]bakeTask, size)
	for y := range tasks {
		row := out.Data[y*size : (y+1)*size]
		tasks[y] = func(ctx context.Context) int {
			if ctx.Err() != nil {
				return 0
			}
			for x := range row {
				nv, roughness := TexelCoordinates(x, y, size)
				row[x] = shading.IntegrateDFG(nv, roughness, sampleCount)
			}
			return size
		}
	}

	logger.Debug("dfg bake", zap.Int("size", size), zap.Uint32("samples", sampleCount))
	if err := b.run(ctx, "dfg", tasks); err != nil {
		return nil, err
	}
	return out, nil
}

// bakeTask computes one slice of a bake output and returns how many texels it wrote.
type bakeTask func(ctx context.Context) int

// run submits every task to the pool and blocks until all submitted tasks
// have finished. Submission stops as soon as ctx is done.
func (b *baker) run(ctx context.Context, name string, tasks []bakeTask) error {
	prof := profiler.NewProfiler(name)
	prof.SetInterval(b.profileInterval)

	var wg sync.WaitGroup
	for i, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				texels := task(ctx)
				prof.Tick(texels)
				return texels, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("bake cancelled", zap.String("job", name), zap.Error(err))
		return err
	}
	prof.Done()
	return nil
}

func validateCubemap(c *Cubemap) error {
	if c == nil || c.Size <= 0 {
		return fmt.Errorf("%w: empty cubemap", ErrInvalidCubemap)
	}
	for f, texels := range c.Faces {
		if len(texels) != c.Size*c.Size {
			return fmt.Errorf("%w: face %s has %d texels, want %d", ErrInvalidCubemap, FaceNames[f], len(texels), c.Size*c.Size)
		}
	}
	return nil
}
