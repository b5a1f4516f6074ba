package api

import (
    "sync"
)

// SSEEvent is one plan event fanned out to stream subscribers, keyed by
// equipment id.
type SSEEvent struct {
    Type string
    Data map[string]any
}

type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan SSEEvent]struct{} // equipmentId -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(equipmentID string) chan SSEEvent {
    ch := make(chan SSEEvent, 8)
    b.mu.Lock()
    if b.subs[equipmentID] == nil { b.subs[equipmentID] = map[chan SSEEvent]struct{}{} }
    b.subs[equipmentID][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(equipmentID string, ch chan SSEEvent) {
    b.mu.Lock()
    if m := b.subs[equipmentID]; m != nil {
        delete(m, ch)
        if len(m) == 0 { delete(b.subs, equipmentID) }
    }
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(equipmentID string, evt SSEEvent) {
    b.mu.Lock()
    m := b.subs[equipmentID]
    for ch := range m {
        select { case ch <- evt: default: }
    }
    b.mu.Unlock()
}
