package history

import (
	"context"
	"testing"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	turns := []assistant.ConversationTurn{
		assistant.NewUserTurn("oi"),
		assistant.NewAssistantTurn("olá"),
	}
	if err := store.Save(ctx, "s1", turns); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Content != "oi" || loaded[1].Content != "olá" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestInMemoryStoreUnknownSession(t *testing.T) {
	store := NewInMemoryStore()

	loaded, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("loaded = %+v, want empty", loaded)
	}
}

func TestInMemoryStoreCopiesOnBothSides(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	turns := []assistant.ConversationTurn{assistant.NewUserTurn("original")}
	if err := store.Save(ctx, "s1", turns); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's slice must not leak into the store.
	turns[0].Content = "alterado"

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded[0].Content != "original" {
		t.Fatalf("store shared the caller's backing array: %+v", loaded)
	}

	// And mutating the loaded copy must not leak back either.
	loaded[0].Content = "alterado de novo"
	again, _ := store.Load(ctx, "s1")
	if again[0].Content != "original" {
		t.Fatalf("store returned its internal slice: %+v", again)
	}
}
