package wait

import (
	"testing"
	"time"
)

func TestWaitWithTimeout(t *testing.T) {
	var w Wait
	w.Add(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		w.Done()
	}()
	if w.WaitWithTimeout(time.Second) {
		t.Error("should finish before timeout")
	}

	w.Add(1)
	if !w.WaitWithTimeout(20 * time.Millisecond) {
		t.Error("should time out")
	}
	w.Done()
	w.Wait()
}
