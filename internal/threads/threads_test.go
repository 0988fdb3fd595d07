package threads

import (
	"testing"

	"uiuacore/internal/value"
)

func TestSpawnWaitRoundTrip(t *testing.T) {
	root := NewRootThread()
	id, err := root.Spawn(true, false, func(child *ThisThread) ([]value.Value, error) {
		return []value.Value{value.FromNumber(42)}, nil
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if id != 1 {
		t.Fatalf("first spawned id = %d, want 1", id)
	}
	stack, err := root.Wait(id)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(stack) != 1 || stack[0].(*value.NumberArray).Data[0] != 42 {
		t.Fatalf("Wait result = %+v, want [scalar 42]", stack)
	}
}

func TestSpawnDeniedWhenNotAllowed(t *testing.T) {
	root := NewRootThread()
	if _, err := root.Spawn(false, false, func(*ThisThread) ([]value.Value, error) { return nil, nil }); err == nil {
		t.Fatal("expected Spawn to fail when allowSpawn is false")
	}
}

func TestWaitTwiceFailsSecondTime(t *testing.T) {
	root := NewRootThread()
	id, _ := root.Spawn(true, false, func(*ThisThread) ([]value.Value, error) { return nil, nil })
	if _, err := root.Wait(id); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if _, err := root.Wait(id); err == nil {
		t.Fatal("expected second Wait on the same id to fail")
	}
}

func TestSendRecvBetweenParentAndChild(t *testing.T) {
	root := NewRootThread()
	started := make(chan struct{})
	done := make(chan struct{})
	var childGot value.Value
	id, err := root.Spawn(true, false, func(child *ThisThread) ([]value.Value, error) {
		close(started)
		v, err := child.Recv(0)
		if err != nil {
			return nil, err
		}
		childGot = v
		close(done)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	<-started
	if err := root.Send(id, value.FromNumber(7)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	<-done
	if _, err := root.Wait(id); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if childGot == nil || childGot.(*value.NumberArray).Data[0] != 7 {
		t.Fatalf("child received %+v, want scalar 7", childGot)
	}
}

func TestTryRecvWouldBlockWhenNothingSent(t *testing.T) {
	root := NewRootThread()
	started := make(chan struct{})
	finish := make(chan struct{})
	id, _ := root.Spawn(true, false, func(child *ThisThread) ([]value.Value, error) {
		close(started)
		<-finish
		return nil, nil
	})
	<-started
	if _, err := root.TryRecv(id); err == nil {
		t.Fatal("expected TryRecv to fail when nothing has been sent yet")
	}
	close(finish)
	if _, err := root.Wait(id); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestChannelSendTryRecvRecv(t *testing.T) {
	c := NewChannel()
	if _, _, wouldBlock := c.TryRecv(); !wouldBlock {
		t.Fatal("TryRecv on an empty open channel should report wouldBlock")
	}
	c.Send("a")
	v, ok, _ := c.TryRecv()
	if !ok || v != "a" {
		t.Fatalf("TryRecv() = (%v, %v), want (\"a\", true)", v, ok)
	}
}

func TestChannelCloseDrainsThenReportsClosed(t *testing.T) {
	c := NewChannel()
	c.Send("x")
	c.Close()
	v, ok := c.Recv()
	if !ok || v != "x" {
		t.Fatalf("Recv() after Close with one queued value = (%v, %v), want (\"x\", true)", v, ok)
	}
	if _, ok := c.Recv(); ok {
		t.Fatal("Recv() on a closed, drained channel should report ok=false")
	}
}
