package api

import (
    "testing"
    "time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
    b := NewBroker()
    eq := "eq1"
    ch := b.Subscribe(eq)

    evt := SSEEvent{Type: "plan.created", Data: map[string]any{"planId": "p1"}}
    b.Publish(eq, evt)

    select {
    case got := <-ch:
        if got.Type != evt.Type { t.Fatalf("got type %s, want %s", got.Type, evt.Type) }
        if got.Data["planId"].(string) != "p1" { t.Fatalf("bad payload: %+v", got.Data) }
    case <-time.After(200 * time.Millisecond):
        t.Fatal("timeout waiting for event")
    }

    b.Unsubscribe(eq, ch)
    select {
    case _, ok := <-ch:
        if ok { t.Fatal("channel should be closed after unsubscribe") }
    case <-time.After(50 * time.Millisecond):
        // acceptable if already drained and closed
    }
}

func TestBrokerIsolatesEquipment(t *testing.T) {
    b := NewBroker()
    ch1 := b.Subscribe("eq1")
    ch2 := b.Subscribe("eq2")
    defer b.Unsubscribe("eq1", ch1)
    defer b.Unsubscribe("eq2", ch2)

    b.Publish("eq1", SSEEvent{Type: "plan.created"})
    select {
    case <-ch2:
        t.Fatal("event leaked to another equipment stream")
    case <-time.After(50 * time.Millisecond):
    }
    select {
    case <-ch1:
    case <-time.After(200 * time.Millisecond):
        t.Fatal("subscriber missed its event")
    }
}
