package rendezvous

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// joinScript is the whole join step in one script so redis executes it
// atomically. A plain GET followed by SET or DEL from the client would
// let two concurrent joins both claim (or both consume) the marker.
//
// KEYS[1]: join marker key
// ARGV[1]: joining identity
//
// Returns "" after claiming, otherwise the previous holder.
var joinScript = redis.NewScript(`
local holder = redis.call('GET', KEYS[1])
if not holder then
    redis.call('SET', KEYS[1], ARGV[1])
    return ''
end
if holder == ARGV[1] then
    return holder
end
redis.call('DEL', KEYS[1])
return holder
`)

// RedisMarkerStore keeps join markers in redis so handlers in different
// processes still rendezvous correctly.
type RedisMarkerStore struct {
	client *redis.Client
}

func NewRedisMarkerStore(client *redis.Client) *RedisMarkerStore {
	return &RedisMarkerStore{client: client}
}

func markerKey(roomID string) string {
	return "pong:join:" + roomID
}

func (s *RedisMarkerStore) Exchange(ctx context.Context, roomID, identity string) (string, error) {
	holder, err := joinScript.Run(ctx, s.client, []string{markerKey(roomID)}, identity).Text()
	if err != nil {
		return "", err
	}
	return holder, nil
}

func (s *RedisMarkerStore) Delete(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, markerKey(roomID)).Err()
}
