package statsfloat

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAdd(t *testing.T) {
	Convey("When multiple writers add to the float value concurrently", t, func() {
		f64 := float64(0.0)
		numOps := 3000
		numWriters := 200

		start := make(chan struct{})
		wg := sync.WaitGroup{}
		wg.Add(numWriters)
		adder := func() {
			<-start
			for i := 0; i < numOps; i++ {
				Add(&f64, 1.0)
			}
			wg.Done()
		}

		for i := 0; i < numWriters; i++ {
			go adder()
		}

		time.Sleep(time.Millisecond * 10)
		close(start)
		wg.Wait()
		So(f64, ShouldEqual, float64(numOps*numWriters))
	})
}

func TestBestTryImprove(t *testing.T) {
	Convey("Given a fresh Best tracker", t, func() {
		b := NewBest()

		Convey("the first candidate always improves it", func() {
			So(b.TryImprove(10.0), ShouldBeTrue)
			So(b.Value(), ShouldEqual, 10.0)
		})

		Convey("a larger candidate never improves it", func() {
			b.TryImprove(10.0)
			So(b.TryImprove(20.0), ShouldBeFalse)
			So(b.Value(), ShouldEqual, 10.0)
		})

		Convey("concurrent improving candidates converge on the smallest", func() {
			var wg sync.WaitGroup
			for i := 1; i <= 100; i++ {
				wg.Add(1)
				go func(v float64) {
					defer wg.Done()
					b.TryImprove(v)
				}(float64(i))
			}
			wg.Wait()
			So(b.Value(), ShouldEqual, 1.0)
		})
	})
}
