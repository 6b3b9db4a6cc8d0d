// Package testing provides deterministic scheduling helpers for navstack tests.
//
// # Quick Start
//
// Drive a navigator on a fake looper and settle it between steps:
//
//	func TestPushPop(t *testing.T) {
//	    l := navtest.NewFakeLooper()
//	    nav := navigation.NewNavigator(owner, l)
//	    content := navigation.NewMemoryContainer("content")
//
//	    nav.LoadRoot(content, home, nil, false)
//	    nav.Push(home, detail)
//	    l.RunUntilIdle()
//
//	    nav.Pop(content)
//	    if err := l.Settle(time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// # Timing
//
// [FakeLooper] runs nothing on its own. RunUntilIdle runs what is due now,
// Advance moves the [FakeClock] forward and runs what falls due on the way,
// and Settle keeps advancing until nothing is scheduled. A [Recorder] fed
// from the same clock captures when each operation ran.
package testing
