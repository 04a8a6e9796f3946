package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r repo) expireAll(ctx context.Context, pipe redis.Pipeliner, sessionId string) {
	pipe.Expire(ctx, r.getSessionKey(sessionId), r.expireDuration)
	pipe.Expire(ctx, r.getPlayersKey(sessionId), r.expireDuration)
}

func (r repo) exists(ctx context.Context, sessionId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getSessionKey(sessionId)).Result()
	if err != nil {
		return false, err
	}

	return res > 0, nil
}
