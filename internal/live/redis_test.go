package live

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// redisAddr returns the address of a test server or skips the test.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TILEFILTER_REDIS_ADDR")
	if addr == "" {
		t.Skip("TILEFILTER_REDIS_ADDR not set")
	}
	return addr
}

// stringify converts encoded values to the strings Redis hands back.
func stringify(v map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(v))
	for k, val := range v {
		switch x := val.(type) {
		case int:
			out[k] = strconv.Itoa(x)
		case []uint8:
			out[k] = string(x)
		default:
			out[k] = x
		}
	}
	return out
}

func TestDecodeTile(t *testing.T) {
	src := testBuffer(t, 10, 10, 3)
	d := tile.Descriptor{Index: 2, X: 4, Y: 6, Width: 3, Height: 2}
	buf, err := tile.Extract(src, d)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	msg := redis.XMessage{ID: "1-0", Values: stringify(encodeTile("run1", tile.Result{Descriptor: d, Buffer: buf}))}
	e, err := decodeTile(msg)
	if err != nil {
		t.Fatalf("decodeTile failed: %v", err)
	}
	if e.RunID != "run1" || e.ID != "1-0" {
		t.Errorf("got run %q id %q", e.RunID, e.ID)
	}
	if e.Result.Descriptor != d {
		t.Errorf("descriptor: got %v, want %v", e.Result.Descriptor, d)
	}
	if !e.Result.Buffer.Equal(buf) {
		t.Error("pixels differ after decode")
	}
}

func TestDecodeTile_BadField(t *testing.T) {
	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"run": "r", "index": "x", "x": "0", "y": "0", "width": "1", "height": "1",
	}}
	if _, err := decodeTile(msg); err == nil {
		t.Error("expected error for non-numeric index")
	}
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	addr := redisAddr(t)
	ctx := context.Background()
	stream := "tilefilter:test:" + strconv.FormatInt(int64(os.Getpid()), 10)

	pub, err := NewRedisPublisher(ctx, RedisOptions{Addr: addr, Stream: stream, RunID: "roundtrip"})
	if err != nil {
		t.Fatalf("NewRedisPublisher failed: %v", err)
	}

	src := testBuffer(t, 30, 30, 4)
	out, err := engine.ProcessImage(ctx, src, filter.Grayscale(), 10, nil, pub)
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if pub.Published() != 9 || pub.Failed() != 0 {
		t.Fatalf("published %d, failed %d", pub.Published(), pub.Failed())
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	defer client.Del(ctx, stream)

	entries, err := ReadStream(ctx, client, stream, "0", "roundtrip", 100)
	if err != nil {
		t.Fatalf("ReadStream failed: %v", err)
	}
	if len(entries) != 9 {
		t.Fatalf("read %d entries, want 9", len(entries))
	}
	results := make([]tile.Result, len(entries))
	for i, e := range entries {
		results[i] = e.Result
	}
	merged, err := tile.Merge(30, 30, 4, results)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !merged.Equal(out) {
		t.Error("tiles read from Redis do not reassemble to the output")
	}
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	_, err := NewRedisPublisher(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Error("expected ping failure")
	}
}
