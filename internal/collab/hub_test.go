package collab

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTextDocSetAndGet(t *testing.T) {
	doc := NewTextDoc()

	if doc.Text() != "" {
		t.Errorf("Expected empty text, got '%s'", doc.Text())
	}

	doc.SetText("hello")
	if doc.Text() != "hello" {
		t.Errorf("Expected 'hello', got '%s'", doc.Text())
	}

	doc.SetText("world")
	if doc.Text() != "world" {
		t.Errorf("Expected 'world', got '%s'", doc.Text())
	}
}

func TestTextDocNotifiesListeners(t *testing.T) {
	doc := NewTextDoc()

	calls := 0
	doc.OnUpdate(func() { calls++ })

	doc.SetText("a")
	doc.SetText("b")

	if calls != 2 {
		t.Errorf("Expected 2 notifications, got %d", calls)
	}
}

func TestTextDocDestroyed(t *testing.T) {
	doc := NewTextDoc()
	doc.SetText("before")

	calls := 0
	doc.OnUpdate(func() { calls++ })

	doc.Destroy()
	doc.SetText("after")

	if doc.Text() != "before" {
		t.Errorf("Destroyed doc should keep old text, got '%s'", doc.Text())
	}
	if calls != 0 {
		t.Errorf("Destroyed doc should not notify, got %d calls", calls)
	}
}

func TestTextDocConcurrency(t *testing.T) {
	doc := NewTextDoc()

	var notified sync.WaitGroup
	notified.Add(100)
	doc.OnUpdate(notified.Done)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc.SetText(fmt.Sprintf("update-%d", i))
		}(i)
	}
	wg.Wait()
	notified.Wait()

	if doc.Text() == "" {
		t.Error("Expected some update to win")
	}
}

func TestHubCreation(t *testing.T) {
	hub := NewHub(zap.NewNop())
	if hub == nil {
		t.Fatal("Hub should not be nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map should be initialized")
	}
}

func TestJoinReturnsSameReplica(t *testing.T) {
	hub := NewHub(zap.NewNop())

	doc1, _, err := hub.Join("test-room")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	doc2, _, err := hub.Join("test-room")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if doc1 != doc2 {
		t.Error("Joining the same room should return the same replica")
	}

	doc3, _, err := hub.Join("other-room")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if doc1 == doc3 {
		t.Error("Different rooms should have different replicas")
	}
}

func TestHubCounts(t *testing.T) {
	hub := NewHub(zap.NewNop())

	if hub.RoomCount() != 0 {
		t.Errorf("Expected 0 rooms, got %d", hub.RoomCount())
	}
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}

	hub.Join("room-1")
	hub.Join("room-2")

	// Joined rooms without remote peers do not count as active
	if hub.RoomCount() != 0 {
		t.Errorf("Expected 0 active rooms without clients, got %d", hub.RoomCount())
	}
}

func TestBroadcastSyncAppliesToReplica(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	doc, _, err := hub.Join("broadcast-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	hub.broadcast <- &Message{
		RoomID: "broadcast-test",
		Data:   EncodeMessage(MessageSync, []byte("shared text")),
		Sender: nil,
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if doc.Text() == "shared text" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Expected replica to apply sync frame, text is '%s'", doc.Text())
}

func TestAwarenessNotApplied(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	doc, _, err := hub.Join("awareness-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	hub.broadcast <- &Message{
		RoomID: "awareness-test",
		Data:   EncodeMessage(MessageAwareness, []byte(`{"saved":"saving"}`)),
		Sender: nil,
	}

	time.Sleep(20 * time.Millisecond)

	if doc.Text() != "" {
		t.Errorf("Awareness frames must not change the replica, got '%s'", doc.Text())
	}
}

func TestProviderPeers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	_, provider, err := hub.Join("peers-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// The local replica counts as a peer even with nobody connected
	if provider.Peers() != 1 {
		t.Errorf("Expected 1 peer, got %d", provider.Peers())
	}
}

func TestProviderSetStatusFieldNoPeers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	_, provider, err := hub.Join("status-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Must be a no-op without connected peers, not a panic
	provider.SetStatusField("saved", "saved")
}

func TestProviderDestroyClosesEmptySession(t *testing.T) {
	hub := NewHub(zap.NewNop())

	doc1, provider, err := hub.Join("destroy-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	provider.Destroy()

	doc2, _, err := hub.Join("destroy-test")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if doc1 == doc2 {
		t.Error("Rejoining a destroyed room should create a fresh replica")
	}
}
