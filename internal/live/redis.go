package live

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// DefaultStream is the Redis stream tiles are published to.
const DefaultStream = "tilefilter:tiles"

// RedisOptions configures a RedisPublisher.
type RedisOptions struct {
	Addr   string
	Stream string
	// RunID tags every entry so consumers can tell runs apart.
	RunID string
	// MaxLen trims the stream approximately to this many entries. Zero keeps
	// everything.
	MaxLen int64
	// Buffer is the capacity of the hand-off queue in front of Redis.
	Buffer int
}

// RedisPublisher streams tile results to a Redis stream with XADD so a
// remote viewer can render a run as it progresses. Notify never waits on
// the network: results go through a Queue and a single goroutine writes
// them to Redis.
type RedisPublisher struct {
	client *redis.Client
	stream string
	runID  string
	maxLen int64

	queue *Queue
	done  chan struct{}

	published atomic.Int64
	failed    atomic.Int64
}

// NewRedisPublisher connects to Redis and starts the writer goroutine.
func NewRedisPublisher(ctx context.Context, opts RedisOptions) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return newRedisPublisher(client, opts), nil
}

func newRedisPublisher(client *redis.Client, opts RedisOptions) *RedisPublisher {
	stream := opts.Stream
	if stream == "" {
		stream = DefaultStream
	}
	runID := opts.RunID
	if runID == "" {
		runID = strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	p := &RedisPublisher{
		client: client,
		stream: stream,
		runID:  runID,
		maxLen: opts.MaxLen,
		queue:  NewQueue(opts.Buffer),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Notify queues r for publishing.
func (p *RedisPublisher) Notify(r tile.Result) {
	p.queue.Notify(r)
}

// RunID returns the tag written with every entry.
func (p *RedisPublisher) RunID() string { return p.runID }

// Stream returns the stream name.
func (p *RedisPublisher) Stream() string { return p.stream }

// Published returns the number of tiles written to Redis.
func (p *RedisPublisher) Published() int64 { return p.published.Load() }

// Failed returns the number of tiles that could not be written.
func (p *RedisPublisher) Failed() int64 { return p.failed.Load() }

// Close flushes queued tiles and closes the connection.
func (p *RedisPublisher) Close() error {
	p.queue.Close()
	<-p.done
	return p.client.Close()
}

func (p *RedisPublisher) run() {
	defer close(p.done)
	ctx := context.Background()
	for r := range p.queue.Results() {
		args := &redis.XAddArgs{
			Stream: p.stream,
			Values: encodeTile(p.runID, r),
		}
		if p.maxLen > 0 {
			args.MaxLen = p.maxLen
			args.Approx = true
		}
		if err := p.client.XAdd(ctx, args).Err(); err != nil {
			p.failed.Add(1)
			engine.Logger().Warn("redis publish failed", "stream", p.stream, "tile", r.Index, "err", err)
			continue
		}
		p.published.Add(1)
	}
}

func encodeTile(runID string, r tile.Result) map[string]interface{} {
	v := map[string]interface{}{
		"run":    runID,
		"index":  r.Index,
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	}
	if r.Buffer != nil {
		v["channels"] = r.Buffer.Channels
		v["pix"] = r.Buffer.Pix
	}
	return v
}

// StreamEntry is one tile read back from a stream.
type StreamEntry struct {
	ID     string
	RunID  string
	Result tile.Result
}

// ReadStream returns up to count entries of stream after the given ID
// ("0" for the beginning), skipping entries from other runs when runID is
// not empty.
func ReadStream(ctx context.Context, client *redis.Client, stream, after, runID string, count int64) ([]StreamEntry, error) {
	res, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, after},
		Count:   count,
		Block:   -1,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stream %s: %w", stream, err)
	}

	var entries []StreamEntry
	for _, s := range res {
		for _, msg := range s.Messages {
			e, err := decodeTile(msg)
			if err != nil {
				return entries, err
			}
			if runID != "" && e.RunID != runID {
				continue
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func decodeTile(msg redis.XMessage) (StreamEntry, error) {
	e := StreamEntry{ID: msg.ID, RunID: stringValue(msg.Values["run"])}

	ints := map[string]*int{
		"index":  &e.Result.Index,
		"x":      &e.Result.X,
		"y":      &e.Result.Y,
		"width":  &e.Result.Width,
		"height": &e.Result.Height,
	}
	for key, dst := range ints {
		n, err := strconv.Atoi(stringValue(msg.Values[key]))
		if err != nil {
			return e, fmt.Errorf("entry %s: field %s: %w", msg.ID, key, err)
		}
		*dst = n
	}

	raw, ok := msg.Values["channels"]
	if !ok {
		return e, nil
	}
	channels, err := strconv.Atoi(stringValue(raw))
	if err != nil {
		return e, fmt.Errorf("entry %s: field channels: %w", msg.ID, err)
	}
	buf, err := pixel.Wrap(e.Result.Width, e.Result.Height, channels, []byte(stringValue(msg.Values["pix"])))
	if err != nil {
		return e, fmt.Errorf("entry %s: %w", msg.ID, err)
	}
	e.Result.Buffer = buf
	return e, nil
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
