package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/memslab/lasermill/pkg/geometry"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit=%t err=%v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("sequence-data"), TTLSequence); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get() = hit=%t err=%v, want hit", hit, err)
	}
	if string(data) != "sequence-data" {
		t.Errorf("Get() = %q, want sequence-data", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete() reported a hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry reported as hit")
	}
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("Get() = hit=%t err=%v, want miss", hit, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("identical inputs should hash identically")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	square := []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 5}}
	opts := SequenceKeyOpts{MinInitial: 2, TargetFinal: 0.5}

	k1 := k.SequenceKey(square, opts)
	if !strings.HasPrefix(k1, "seq:") {
		t.Errorf("SequenceKey = %q, want seq: prefix", k1)
	}
	if k2 := k.SequenceKey(square, opts); k1 != k2 {
		t.Error("identical inputs should produce identical keys")
	}
	if k3 := k.SequenceKey(square, SequenceKeyOpts{MinInitial: 2, TargetFinal: 0.25}); k1 == k3 {
		t.Error("different constraints should produce different keys")
	}

	p1 := k.ProgramKey("abc", ProgramKeyOpts{Dialect: "aerobasic", Policy: "sequential"})
	p2 := k.ProgramKey("abc", ProgramKeyOpts{Dialect: "aerobasic", Policy: "interleaved"})
	if p1 == p2 {
		t.Error("different policies should produce different program keys")
	}
}
