package profiler

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-pbr/log"
)

func TestTickLogsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	log.SetLevel(log.Info)
	defer log.SetSink(os.Stdout)
	defer log.SetLevel(log.Warning)

	p := NewProfiler("dfg")
	if p.Tick(16) {
		t.Error("first tick logged before the default interval elapsed")
	}

	p.SetInterval(0)
	if !p.Tick(16) {
		t.Error("tick with zero interval did not log")
	}
	p.Done()

	out := buf.String()
	for _, want := range []string{"bake progress", "bake finished", "dfg", "texels_per_sec"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestTickConcurrent(t *testing.T) {
	p := NewProfiler("prefilter")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Tick(4)
			}
		}()
	}
	wg.Wait()

	tasks, texels := p.Totals()
	if tasks != 800 || texels != 3200 {
		t.Errorf("totals = %d tasks, %d texels; want 800, 3200", tasks, texels)
	}
}
