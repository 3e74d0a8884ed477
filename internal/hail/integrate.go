package hail

import (
	"math"
	"sync"

	"github.com/couchcryptid/storm-data-hail/internal/domain"
)

// shiScale converts the integrated energy flux to index units.
const shiScale = 0.1

// integrate builds the SHI grid on the lowest sweep's geometry. Each upper
// sweep contributes the element of its horizontally nearest gate when that
// gate is valid and non-zero. Rays are distributed over a worker pool; every
// worker writes only its own rows.
func integrate(sweeps []sweepFields, workers int) domain.Grid {
	base := sweeps[0]
	upper := sweeps[1:]

	indexes := make([]*groundIndex, len(upper))
	var wg sync.WaitGroup
	for i := range upper {
		wg.Add(1)
		go func() {
			defer wg.Done()
			indexes[i] = newGroundIndex(upper[i].geom)
		}()
	}
	wg.Wait()

	shi := domain.NewGrid(base.shi.Azimuths, base.shi.Ranges)
	rays := make(chan int)
	if workers > shi.Azimuths {
		workers = shi.Azimuths
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ray := range rays {
				integrateRay(shi, ray, base, upper, indexes)
			}
		}()
	}
	for ray := range shi.Azimuths {
		rays <- ray
	}
	close(rays)
	wg.Wait()
	return shi
}

func integrateRay(shi domain.Grid, ray int, base sweepFields, upper []sweepFields, indexes []*groundIndex) {
	for j := range shi.Ranges {
		k := shi.Index(ray, j)

		var sum float64
		if base.valid[k] {
			sum = base.shi.Data[k]
		}

		x, y := base.geom.x.Data[k], base.geom.y.Data[k]
		for s, idx := range indexes {
			n := idx.nearest(x, y)
			if !upper[s].valid[n] || upper[s].shi.Data[n] == 0 {
				continue
			}
			sum += upper[s].shi.Data[n]
		}

		if sum > 0 {
			shi.Data[k] = shiScale * sum
		} else {
			shi.Data[k] = math.NaN()
		}
	}
}
