package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-pbr/log"
	"go.uber.org/zap"
)

var logger = log.New("profiler")

// Profiler tracks the throughput and memory statistics of a bake job.
// Bake tasks report completed work through Tick, which is safe for concurrent
// use, and stats are logged at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	name           string
	start          time.Time
	lastTime       time.Time
	updateInterval time.Duration
	tasks          int
	texels         int
	totalTasks     int
	totalTexels    int
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler for the named job.
// Update interval defaults to 1 second.
//
// Parameters:
//   - name: the job name attached to every log entry
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(name string) *Profiler {
	now := time.Now()
	return &Profiler{
		name:           name,
		start:          now,
		lastTime:       now,
		updateInterval: time.Second,
	}
}

// SetInterval changes how often Tick logs statistics. Zero logs on every tick.
func (p *Profiler) SetInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateInterval = d
}

// Tick records one completed task covering the given number of texels.
// Logs throughput statistics when the update interval has elapsed.
// Statistics include: tasks/s, texels/s, heap usage, allocation rate and GC count/pause times.
//
// Parameters:
//   - texels: number of output texels the finished task produced
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(texels int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tasks++
	p.texels += texels
	p.totalTasks++
	p.totalTexels += texels

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	seconds := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / seconds

	gcCount := p.memStats.NumGC
	var maxPause time.Duration
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	logger.Info("bake progress",
		zap.String("job", p.name),
		zap.Float64("tasks_per_sec", float64(p.tasks)/seconds),
		zap.Float64("texels_per_sec", float64(p.texels)/seconds),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_mb_per_sec", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Duration("gc_max_pause", maxPause),
	)

	p.tasks = 0
	p.texels = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Done logs the totals of the job since the profiler was created.
//
// Returns:
//   - time.Duration: the elapsed time of the job
func (p *Profiler) Done() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.start)
	logger.Info("bake finished",
		zap.String("job", p.name),
		zap.Int("tasks", p.totalTasks),
		zap.Int("texels", p.totalTexels),
		zap.Duration("elapsed", elapsed),
	)
	return elapsed
}

// Totals returns the number of tasks and texels recorded so far.
func (p *Profiler) Totals() (tasks, texels int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalTasks, p.totalTexels
}
